package valuation

import (
	"context"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/stablecore/sce/internal/oracle"
	"github.com/stablecore/sce/internal/registry"
	"github.com/stablecore/sce/internal/types"
)

// 8-decimal feed quotes.
const (
	priceETH = int64(200000000000)   // $2,000
	priceBTC = int64(4000000000000)  // $40,000
)

func newTestService(t *testing.T, prices map[string]int64) (*Service, *oracle.Static) {
	t.Helper()

	src := oracle.NewStatic(prices)
	assets := make([]string, 0, len(prices))
	sources := make([]oracle.PriceOracle, 0, len(prices))
	for asset := range prices {
		assets = append(assets, asset)
		sources = append(sources, src)
	}
	reg, err := registry.New(assets, sources)
	require.NoError(t, err)
	return NewService(reg), src
}

func TestValueInUSD(t *testing.T) {
	svc, _ := newTestService(t, map[string]int64{"uweth": priceETH})

	// 15 ETH at $2,000 is $30,000.
	amount := sdkmath.NewInt(15).Mul(types.Precision)
	value, err := svc.ValueInUSD(context.Background(), "uweth", amount)
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewInt(30000).Mul(types.Precision), value)
}

func TestValueInUSDZeroAmount(t *testing.T) {
	svc, _ := newTestService(t, map[string]int64{"uweth": priceETH})

	value, err := svc.ValueInUSD(context.Background(), "uweth", sdkmath.ZeroInt())
	require.NoError(t, err)
	require.True(t, value.IsZero())
}

func TestValueInUSDUnapprovedAsset(t *testing.T) {
	svc, _ := newTestService(t, map[string]int64{"uweth": priceETH})

	_, err := svc.ValueInUSD(context.Background(), "udoge", sdkmath.NewInt(1))
	require.ErrorIs(t, err, registry.ErrAssetNotApproved)
}

func TestValueInUSDNegativePricePassesThroughCast(t *testing.T) {
	svc, src := newTestService(t, map[string]int64{"uweth": priceETH})
	src.SetPrice("uweth", -1)

	// The forward conversion reinterprets the signed quote as unsigned, so a
	// negative feed value produces an enormous positive valuation rather
	// than an error.
	value, err := svc.ValueInUSD(context.Background(), "uweth", types.Precision)
	require.NoError(t, err)
	require.True(t, value.IsPositive())
	require.True(t, value.GT(sdkmath.NewInt(1000000).Mul(types.Precision)))
}

func TestTokenAmountFromUSD(t *testing.T) {
	svc, _ := newTestService(t, map[string]int64{"uweth": priceETH})

	// $100 of ETH at $2,000 is 0.05 ETH.
	usd := sdkmath.NewInt(100).Mul(types.Precision)
	amount, err := svc.TokenAmountFromUSD(context.Background(), "uweth", usd)
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewInt(5).MulRaw(1e16), amount)
}

func TestTokenAmountFromUSDZeroPrice(t *testing.T) {
	svc, src := newTestService(t, map[string]int64{"uweth": priceETH})
	src.SetPrice("uweth", 0)

	_, err := svc.TokenAmountFromUSD(context.Background(), "uweth", types.Precision)
	require.ErrorIs(t, err, ErrOracleInvalidPrice)
}

func TestRoundTripTruncates(t *testing.T) {
	// $3,333 feed price does not divide the scale evenly, so converting an
	// amount to value and back loses the truncated remainder.
	svc, _ := newTestService(t, map[string]int64{"uweth": 333300000000})

	amount := sdkmath.NewInt(7).Mul(types.Precision).QuoRaw(3)
	value, err := svc.ValueInUSD(context.Background(), "uweth", amount)
	require.NoError(t, err)

	back, err := svc.TokenAmountFromUSD(context.Background(), "uweth", value)
	require.NoError(t, err)
	require.True(t, back.LTE(amount))
	require.True(t, amount.Sub(back).LT(sdkmath.NewInt(1000)))
}

func TestTotalCollateralValueUSD(t *testing.T) {
	svc, _ := newTestService(t, map[string]int64{
		"uweth": priceETH,
		"uwbtc": priceBTC,
	})

	position := types.Position{
		Collateral: map[string]sdkmath.Int{
			"uweth": sdkmath.NewInt(2).Mul(types.Precision), // $4,000
			"uwbtc": types.Precision.QuoRaw(2),              // $20,000
		},
		Debt: sdkmath.ZeroInt(),
	}

	total, err := svc.TotalCollateralValueUSD(context.Background(), position)
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewInt(24000).Mul(types.Precision), total)
}

func TestTotalCollateralValueUSDEmptyPosition(t *testing.T) {
	svc, _ := newTestService(t, map[string]int64{"uweth": priceETH})

	total, err := svc.TotalCollateralValueUSD(context.Background(), types.Position{})
	require.NoError(t, err)
	require.True(t, total.IsZero())
}
