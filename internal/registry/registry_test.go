package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stablecore/sce/internal/oracle"
)

func TestNewRejectsMismatchedConfig(t *testing.T) {
	src := oracle.NewStatic(map[string]int64{"uweth": 1})

	_, err := New([]string{"uweth", "uwbtc"}, []oracle.PriceOracle{src})
	require.ErrorIs(t, err, ErrConfigMismatch)
}

func TestApprovalAndLookup(t *testing.T) {
	ethSrc := oracle.NewStatic(map[string]int64{"uweth": 200000000000})
	btcSrc := oracle.NewStatic(map[string]int64{"uwbtc": 4000000000000})

	reg, err := New([]string{"uweth", "uwbtc"}, []oracle.PriceOracle{ethSrc, btcSrc})
	require.NoError(t, err)

	require.True(t, reg.IsApproved("uweth"))
	require.True(t, reg.IsApproved("uwbtc"))
	require.False(t, reg.IsApproved("udoge"))

	src, err := reg.PriceSourceOf("uwbtc")
	require.NoError(t, err)
	require.Same(t, btcSrc, src.(*oracle.Static))

	_, err = reg.PriceSourceOf("udoge")
	require.ErrorIs(t, err, ErrAssetNotApproved)
}

func TestApprovedAssetsKeepsRegistrationOrder(t *testing.T) {
	src := oracle.NewStatic(nil)
	reg, err := New([]string{"uwbtc", "uweth"}, []oracle.PriceOracle{src, src})
	require.NoError(t, err)

	require.Equal(t, []string{"uwbtc", "uweth"}, reg.ApprovedAssets())

	// The returned slice is a copy.
	assets := reg.ApprovedAssets()
	assets[0] = "mutated"
	require.Equal(t, []string{"uwbtc", "uweth"}, reg.ApprovedAssets())
}

func TestDuplicateRegistrationListsAssetTwice(t *testing.T) {
	first := oracle.NewStatic(map[string]int64{"uweth": 1})
	second := oracle.NewStatic(map[string]int64{"uweth": 2})

	reg, err := New([]string{"uweth", "uweth"}, []oracle.PriceOracle{first, second})
	require.NoError(t, err)

	// The asset appears once per registration; the last source wins lookups.
	require.Equal(t, []string{"uweth", "uweth"}, reg.ApprovedAssets())
	src, err := reg.PriceSourceOf("uweth")
	require.NoError(t, err)
	require.Same(t, second, src.(*oracle.Static))
}
