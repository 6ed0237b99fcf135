/*

ValuationService converts collateral amounts to their unit-of-account value
and back, using the registry's price sources. All arithmetic is integer
fixed point with truncating division, so rounding never credits a
participant with value the protocol does not hold.

A note on price sign: the feed contract quotes a signed integer, and this
service casts it to unsigned without rejecting non-positive values on the
forward path. A negative quote therefore values collateral at an absurdly
large number. Feeds are trusted here; the behavior is pinned by an explicit
test. The inverse path does reject a zero price, since it would otherwise
divide by zero.

*/

package valuation

import (
	"context"
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/stablecore/sce/internal/registry"
	"github.com/stablecore/sce/internal/types"
)

var (
	// ErrOracleInvalidPrice is returned when an inverse conversion meets a
	// zero price.
	ErrOracleInvalidPrice = errors.New("oracle returned a degenerate price")
)

// Service values collateral through the registry's price sources.
type Service struct {
	registry *registry.Registry
}

// NewService wires the valuation service to a registry.
func NewService(reg *registry.Registry) *Service {
	return &Service{registry: reg}
}

// ValueInUSD returns the unit-of-account value of amount units of asset, at
// Precision scale.
func (s *Service) ValueInUSD(ctx context.Context, asset string, amount sdkmath.Int) (sdkmath.Int, error) {
	source, err := s.registry.PriceSourceOf(asset)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	price, err := source.LatestPrice(ctx, asset)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("price lookup failed for %s: %w", asset, err)
	}

	// The signed feed quote is reinterpreted as unsigned, sign untouched.
	unsigned := sdkmath.NewIntFromUint64(uint64(price))
	value := unsigned.Mul(types.AdditionalFeedPrecision).Mul(amount).Quo(types.Precision)
	return value, nil
}

// TokenAmountFromUSD returns how many base units of asset are worth
// usdAmount (at Precision scale). Truncates in the protocol's favour.
func (s *Service) TokenAmountFromUSD(ctx context.Context, asset string, usdAmount sdkmath.Int) (sdkmath.Int, error) {
	source, err := s.registry.PriceSourceOf(asset)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	price, err := source.LatestPrice(ctx, asset)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("price lookup failed for %s: %w", asset, err)
	}
	if price == 0 {
		return sdkmath.ZeroInt(), fmt.Errorf("%w: zero price for %s", ErrOracleInvalidPrice, asset)
	}

	unsigned := sdkmath.NewIntFromUint64(uint64(price))
	amount := usdAmount.Mul(types.Precision).Quo(unsigned.Mul(types.AdditionalFeedPrecision))
	return amount, nil
}

// TotalCollateralValueUSD sums the value of every approved asset held in the
// position, iterating the registry in registration order. An asset that was
// registered twice is counted twice; see registry.New.
func (s *Service) TotalCollateralValueUSD(ctx context.Context, position types.Position) (sdkmath.Int, error) {
	total := sdkmath.ZeroInt()
	for _, asset := range s.registry.ApprovedAssets() {
		balance := position.CollateralBalance(asset)
		if balance.IsZero() {
			continue
		}
		value, err := s.ValueInUSD(ctx, asset, balance)
		if err != nil {
			return sdkmath.ZeroInt(), err
		}
		total = total.Add(value)
	}
	return total, nil
}
