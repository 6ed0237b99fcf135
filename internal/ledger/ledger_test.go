package ledger

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func TestCreditAndDebitCollateral(t *testing.T) {
	l := NewLedger()

	l.CreditCollateral("alice", "uweth", sdkmath.NewInt(100))
	l.CreditCollateral("alice", "uweth", sdkmath.NewInt(50))
	require.Equal(t, sdkmath.NewInt(150), l.CollateralBalance("alice", "uweth"))

	err := l.DebitCollateral("alice", "uweth", sdkmath.NewInt(120))
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewInt(30), l.CollateralBalance("alice", "uweth"))
}

func TestDebitCollateralInsufficient(t *testing.T) {
	l := NewLedger()
	l.CreditCollateral("alice", "uweth", sdkmath.NewInt(10))

	err := l.DebitCollateral("alice", "uweth", sdkmath.NewInt(11))
	require.ErrorIs(t, err, ErrInsufficientCollateral)
	// Balance is untouched on failure.
	require.Equal(t, sdkmath.NewInt(10), l.CollateralBalance("alice", "uweth"))
}

func TestDebitUnknownParticipant(t *testing.T) {
	l := NewLedger()
	err := l.DebitCollateral("ghost", "uweth", sdkmath.NewInt(1))
	require.ErrorIs(t, err, ErrInsufficientCollateral)
}

func TestDebtAccounting(t *testing.T) {
	l := NewLedger()

	require.True(t, l.Debt("alice").IsZero())

	l.AddDebt("alice", sdkmath.NewInt(1000))
	l.AddDebt("alice", sdkmath.NewInt(500))
	require.Equal(t, sdkmath.NewInt(1500), l.Debt("alice"))

	require.NoError(t, l.ReduceDebt("alice", sdkmath.NewInt(600)))
	require.Equal(t, sdkmath.NewInt(900), l.Debt("alice"))

	err := l.ReduceDebt("alice", sdkmath.NewInt(901))
	require.ErrorIs(t, err, ErrInsufficientDebt)
	require.Equal(t, sdkmath.NewInt(900), l.Debt("alice"))
}

func TestSnapshotIsACopy(t *testing.T) {
	l := NewLedger()
	l.CreditCollateral("alice", "uweth", sdkmath.NewInt(100))
	l.AddDebt("alice", sdkmath.NewInt(40))

	snap := l.Snapshot("alice")
	require.Equal(t, sdkmath.NewInt(100), snap.CollateralBalance("uweth"))
	require.Equal(t, sdkmath.NewInt(40), snap.Debt)

	// Mutating the snapshot must not leak back into the ledger.
	snap.Collateral["uweth"] = sdkmath.NewInt(0)
	require.Equal(t, sdkmath.NewInt(100), l.CollateralBalance("alice", "uweth"))
}

func TestParticipants(t *testing.T) {
	l := NewLedger()
	require.Empty(t, l.Participants())

	l.CreditCollateral("alice", "uweth", sdkmath.NewInt(1))
	l.AddDebt("bob", sdkmath.NewInt(1))

	participants := l.Participants()
	require.Len(t, participants, 2)
	require.ElementsMatch(t, []string{"alice", "bob"}, participants)
}
