/*

CollateralRegistry: the fixed set of approved collateral assets and the price
source for each. Built once at startup and read-only afterwards, so every
valuation pass iterates the same assets in the same order.

*/

package registry

import (
	"errors"
	"fmt"

	"github.com/stablecore/sce/internal/logger"
	"github.com/stablecore/sce/internal/oracle"
)

var registryLogger = logger.GetForComponent("registry")

var (
	// ErrConfigMismatch is returned when the asset and price source lists
	// differ in length.
	ErrConfigMismatch = errors.New("asset and price source lists must match in length")

	// ErrAssetNotApproved is returned for any asset the registry does not
	// know about.
	ErrAssetNotApproved = errors.New("asset is not an approved collateral")
)

// Registry holds the approved collateral set. Immutable after New.
type Registry struct {
	// assets preserves registration order, including duplicates: a denom
	// registered twice appears twice here and its collateral value is
	// counted twice by valuation sums. No uniqueness check is performed at
	// construction; operators own the asset list.
	assets  []string
	sources map[string]oracle.PriceOracle
}

// New constructs the registry from parallel asset and price source lists.
// Fails with ErrConfigMismatch when the lists differ in length. Duplicate
// asset entries are accepted: the later price source silently overwrites the
// earlier mapping while both entries remain in the iteration list.
func New(assets []string, sources []oracle.PriceOracle) (*Registry, error) {
	if len(assets) != len(sources) {
		return nil, fmt.Errorf("%w: %d assets, %d price sources", ErrConfigMismatch, len(assets), len(sources))
	}

	r := &Registry{
		assets:  make([]string, len(assets)),
		sources: make(map[string]oracle.PriceOracle, len(assets)),
	}
	copy(r.assets, assets)
	for i, asset := range assets {
		r.sources[asset] = sources[i]
	}

	registryLogger.Info().
		Strs("assets", r.assets).
		Msg("Collateral registry constructed")
	return r, nil
}

// IsApproved reports whether the asset has a registered price source.
func (r *Registry) IsApproved(asset string) bool {
	_, ok := r.sources[asset]
	return ok
}

// PriceSourceOf returns the oracle for an approved asset.
func (r *Registry) PriceSourceOf(asset string) (oracle.PriceOracle, error) {
	source, ok := r.sources[asset]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotApproved, asset)
	}
	return source, nil
}

// ApprovedAssets returns the registration-ordered asset list. The returned
// slice is a copy; callers may not mutate registry state through it.
func (r *Registry) ApprovedAssets() []string {
	out := make([]string, len(r.assets))
	copy(out, r.assets)
	return out
}
