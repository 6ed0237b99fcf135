/*

Fixed-point constants shared by the valuation and risk packages. All engine
arithmetic is integer-only on sdkmath.Int; the constants below reconcile the
price feed's native 8-decimal quotes with the engine's internal 18-decimal
unit-of-account representation.

*/

package types

import (
	"math/big"

	sdkmath "cosmossdk.io/math"
)

const (
	// FeedDecimals is the native decimal precision of every price source the
	// registry accepts. Feeds quoting at a different precision must be
	// normalized before registration.
	FeedDecimals = 8
)

var (
	// Precision is the engine's internal fixed-point scale (18 decimals).
	Precision = sdkmath.NewIntFromBigInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))

	// AdditionalFeedPrecision lifts an 8-decimal feed price to the internal
	// 18-decimal scale.
	AdditionalFeedPrecision = sdkmath.NewIntFromBigInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(10), nil))

	// LiquidationThreshold is the fraction (out of LiquidationPrecision) of
	// raw collateral value counted toward the health factor. 50/100 encodes
	// a 200% minimum collateralization ratio.
	LiquidationThreshold = sdkmath.NewInt(50)

	// LiquidationBonus is the extra collateral (fraction of the
	// debt-equivalent seized, out of LiquidationPrecision) awarded to a
	// liquidator.
	LiquidationBonus = sdkmath.NewInt(10)

	// LiquidationPrecision is the denominator for the two fractions above.
	LiquidationPrecision = sdkmath.NewInt(100)

	// MinHealthFactor is the boundary below which a position becomes
	// liquidatable, expressed at Precision scale (1.0).
	MinHealthFactor = sdkmath.NewIntFromBigInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))

	// MaxHealthFactor is the health factor reported for debt-free positions.
	// sdkmath.Int saturates at 256 bits, so this is the largest value the
	// engine can represent.
	MaxHealthFactor = sdkmath.NewIntFromBigInt(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)))
)
