/*

PriceOracle is the consumed price-source capability. The engine queries one
oracle per registered collateral asset and trusts the returned quote; it is
the oracle implementation's job to decide where prices come from.

*/

package oracle

import (
	"context"
	"errors"
)

var (
	// ErrNoPrice is returned when an oracle has no quote for the asset.
	ErrNoPrice = errors.New("no price available for asset")
)

// PriceOracle returns the current price of one whole unit of an asset in the
// unit-of-account. Prices are signed integers at types.FeedDecimals (8)
// decimal places; every source the registry accepts must quote at that
// precision.
type PriceOracle interface {
	LatestPrice(ctx context.Context, asset string) (int64, error)
}
