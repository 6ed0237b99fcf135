package risk

import (
	"context"
	"errors"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/stablecore/sce/internal/ledger"
	"github.com/stablecore/sce/internal/oracle"
	"github.com/stablecore/sce/internal/registry"
	"github.com/stablecore/sce/internal/types"
	"github.com/stablecore/sce/internal/valuation"
)

const priceETH = int64(200000000000) // $2,000 at 8 decimals

func newTestEngine(t *testing.T) (*Engine, *ledger.Ledger, *oracle.Static) {
	t.Helper()

	src := oracle.NewStatic(map[string]int64{"uweth": priceETH})
	reg, err := registry.New([]string{"uweth"}, []oracle.PriceOracle{src})
	require.NoError(t, err)

	led := ledger.NewLedger()
	return NewEngine(led, valuation.NewService(reg)), led, src
}

func usd(n int64) sdkmath.Int {
	return sdkmath.NewInt(n).Mul(types.Precision)
}

func TestFactorForZeroDebt(t *testing.T) {
	factor := FactorFor(sdkmath.ZeroInt(), usd(1000))
	require.Equal(t, types.MaxHealthFactor, factor)
}

func TestFactorForAtExactMinimum(t *testing.T) {
	// $20,000 of collateral adjusted by the 50% threshold covers $10,000 of
	// debt exactly.
	factor := FactorFor(usd(10000), usd(20000))
	require.Equal(t, types.MinHealthFactor, factor)
}

func TestFactorForBelowMinimum(t *testing.T) {
	factor := FactorFor(usd(10000), usd(18000))
	require.True(t, factor.LT(types.MinHealthFactor))
	// 18000 * 0.5 / 10000 = 0.9
	require.Equal(t, sdkmath.NewInt(9).MulRaw(1e17), factor)
}

func TestFactorForTruncates(t *testing.T) {
	// Odd collateral value: the threshold adjustment truncates before the
	// final division.
	factor := FactorFor(usd(3), sdkmath.NewInt(5))
	require.True(t, factor.IsZero())
}

func TestHealthFactorAndAccountInfo(t *testing.T) {
	eng, led, _ := newTestEngine(t)
	ctx := context.Background()

	led.CreditCollateral("alice", "uweth", sdkmath.NewInt(10).Mul(types.Precision))
	led.AddDebt("alice", usd(5000))

	info, err := eng.AccountInfo(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, usd(5000), info.Debt)
	require.Equal(t, usd(20000), info.CollateralValueUSD)

	factor, err := eng.HealthFactor(ctx, "alice")
	require.NoError(t, err)
	// 20000 * 0.5 / 5000 = 2.0
	require.Equal(t, sdkmath.NewInt(2).Mul(types.Precision), factor)
}

func TestHealthFactorNoDebt(t *testing.T) {
	eng, led, _ := newTestEngine(t)

	led.CreditCollateral("alice", "uweth", types.Precision)

	factor, err := eng.HealthFactor(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, types.MaxHealthFactor, factor)
}

func TestAssertHealthy(t *testing.T) {
	eng, led, src := newTestEngine(t)
	ctx := context.Background()

	led.CreditCollateral("alice", "uweth", sdkmath.NewInt(10).Mul(types.Precision))
	led.AddDebt("alice", usd(10000))

	// Exactly at the minimum passes.
	require.NoError(t, eng.AssertHealthy(ctx, "alice"))

	// A price drop pushes the factor below the minimum.
	src.SetPrice("uweth", 180000000000)
	err := eng.AssertHealthy(ctx, "alice")
	require.ErrorIs(t, err, ErrHealthFactorBelowMinimum)

	var breaks *BreaksHealthError
	require.True(t, errors.As(err, &breaks))
	require.Equal(t, "alice", breaks.Participant)
	require.Equal(t, sdkmath.NewInt(9).MulRaw(1e17), breaks.Factor)
}
