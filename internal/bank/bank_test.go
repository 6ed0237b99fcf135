package bank

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func TestFundAndSend(t *testing.T) {
	b := NewBank("usce")

	b.Fund("alice", "uweth", sdkmath.NewInt(100))
	require.Equal(t, sdkmath.NewInt(100), b.BalanceOf("alice", "uweth"))

	require.NoError(t, b.Send("alice", "bob", "uweth", sdkmath.NewInt(40)))
	require.Equal(t, sdkmath.NewInt(60), b.BalanceOf("alice", "uweth"))
	require.Equal(t, sdkmath.NewInt(40), b.BalanceOf("bob", "uweth"))
}

func TestSendInsufficientFunds(t *testing.T) {
	b := NewBank("usce")
	b.Fund("alice", "uweth", sdkmath.NewInt(10))

	err := b.Send("alice", "bob", "uweth", sdkmath.NewInt(11))
	require.ErrorIs(t, err, ErrInsufficientFunds)

	// Nothing moved.
	require.Equal(t, sdkmath.NewInt(10), b.BalanceOf("alice", "uweth"))
	require.True(t, b.BalanceOf("bob", "uweth").IsZero())
}

func TestSendRejectsNonPositiveAmounts(t *testing.T) {
	b := NewBank("usce")
	b.Fund("alice", "uweth", sdkmath.NewInt(10))

	require.ErrorIs(t, b.Send("alice", "bob", "uweth", sdkmath.ZeroInt()), ErrInvalidAmount)
	require.ErrorIs(t, b.Send("alice", "bob", "uweth", sdkmath.NewInt(-5)), ErrInvalidAmount)
}

func TestDebtTokenView(t *testing.T) {
	b := NewBank("usce")
	view := NewDebtTokenView(b, "custody")

	require.NoError(t, view.Mint("alice", sdkmath.NewInt(1000)))
	require.Equal(t, sdkmath.NewInt(1000), b.BalanceOf("alice", "usce"))
	require.Equal(t, sdkmath.NewInt(1000), b.DebtSupply())

	require.NoError(t, view.TransferFrom("alice", "custody", sdkmath.NewInt(400)))
	require.Equal(t, sdkmath.NewInt(400), b.BalanceOf("custody", "usce"))

	require.NoError(t, view.Burn(sdkmath.NewInt(400)))
	require.True(t, b.BalanceOf("custody", "usce").IsZero())
	require.Equal(t, sdkmath.NewInt(600), b.DebtSupply())
}

func TestDebtTokenViewBurnWithoutCustodyBalance(t *testing.T) {
	b := NewBank("usce")
	view := NewDebtTokenView(b, "custody")

	require.NoError(t, view.Mint("alice", sdkmath.NewInt(100)))
	err := view.Burn(sdkmath.NewInt(1))
	require.ErrorIs(t, err, ErrInsufficientFunds)
	require.Equal(t, sdkmath.NewInt(100), b.DebtSupply())
}

func TestAssetTransferView(t *testing.T) {
	b := NewBank("usce")
	view := NewAssetTransferView(b, "custody")

	b.Fund("alice", "uweth", sdkmath.NewInt(50))

	require.NoError(t, view.TransferFrom("alice", "custody", "uweth", sdkmath.NewInt(50)))
	require.Equal(t, sdkmath.NewInt(50), b.BalanceOf("custody", "uweth"))

	require.NoError(t, view.Transfer("bob", "uweth", sdkmath.NewInt(20)))
	require.Equal(t, sdkmath.NewInt(30), b.BalanceOf("custody", "uweth"))
	require.Equal(t, sdkmath.NewInt(20), b.BalanceOf("bob", "uweth"))
}
