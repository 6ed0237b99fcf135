package utils

import (
	"math"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func TestSDKIntToFloat64(t *testing.T) {
	amount := sdkmath.NewInt(1500000000000000000) // 1.5 at 18 decimals

	f, err := SDKIntToFloat64(amount, 18)
	require.NoError(t, err)
	require.InDelta(t, 1.5, f, 1e-12)
}

func TestSDKIntToFloat64Nil(t *testing.T) {
	_, err := SDKIntToFloat64(sdkmath.Int{}, 18)
	require.ErrorIs(t, err, ErrAmountNil)
}

func TestSDKIntToFloat64InvalidPrecision(t *testing.T) {
	_, err := SDKIntToFloat64(sdkmath.OneInt(), -1)
	require.ErrorIs(t, err, ErrInvalidPrecision)
}

func TestFloat64ToSDKInt(t *testing.T) {
	v, err := Float64ToSDKInt(2000.0, 8)
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewInt(200000000000), v)
}

func TestFloat64ToSDKIntRejectsNonFinite(t *testing.T) {
	_, err := Float64ToSDKInt(math.NaN(), 8)
	require.ErrorIs(t, err, ErrNotFinite)

	_, err = Float64ToSDKInt(math.Inf(1), 8)
	require.ErrorIs(t, err, ErrNotFinite)
}

func TestRoundTrip(t *testing.T) {
	v, err := Float64ToSDKInt(1234.5678, 8)
	require.NoError(t, err)

	back, err := SDKIntToFloat64(v, 8)
	require.NoError(t, err)
	require.InDelta(t, 1234.5678, back, 1e-6)
}
