/*

RiskEngine computes health factors and is the single enforcement point for
the overcollateralization invariant. Every mutating engine operation ends
with AssertHealthy on the affected position.

healthFactor = (collateralValue * threshold / 100) * 1e18 / debt

A debt-free position reports MaxHealthFactor and can never be liquidated.

*/

package risk

import (
	"context"
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/stablecore/sce/internal/ledger"
	"github.com/stablecore/sce/internal/types"
	"github.com/stablecore/sce/internal/valuation"
)

var (
	// ErrHealthFactorBelowMinimum is returned when a position does not meet
	// the minimum overcollateralization ratio.
	ErrHealthFactorBelowMinimum = errors.New("health factor below minimum")
)

// BreaksHealthError carries the offending factor alongside
// ErrHealthFactorBelowMinimum.
type BreaksHealthError struct {
	Participant string
	Factor      sdkmath.Int
}

func (e *BreaksHealthError) Error() string {
	return fmt.Sprintf("health factor below minimum: %s has factor %s", e.Participant, e.Factor)
}

func (e *BreaksHealthError) Unwrap() error { return ErrHealthFactorBelowMinimum }

// Engine reads positions from the ledger and values them through the
// valuation service. It never mutates state.
type Engine struct {
	ledger    *ledger.Ledger
	valuation *valuation.Service
}

// NewEngine wires the risk engine to its ledger and valuation service.
func NewEngine(led *ledger.Ledger, val *valuation.Service) *Engine {
	return &Engine{ledger: led, valuation: val}
}

// AccountInfo returns the participant's issued debt and total collateral
// value. Direct read, no side effects.
func (e *Engine) AccountInfo(ctx context.Context, participant string) (types.AccountInfo, error) {
	value, err := e.valuation.TotalCollateralValueUSD(ctx, e.ledger.Snapshot(participant))
	if err != nil {
		return types.AccountInfo{}, err
	}
	return types.AccountInfo{
		Debt:               e.ledger.Debt(participant),
		CollateralValueUSD: value,
	}, nil
}

// HealthFactor computes the participant's current health factor.
func (e *Engine) HealthFactor(ctx context.Context, participant string) (sdkmath.Int, error) {
	info, err := e.AccountInfo(ctx, participant)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	return FactorFor(info.Debt, info.CollateralValueUSD), nil
}

// FactorFor is the pure health factor formula over a debt and collateral
// value pair. Exposed for callers that already hold an AccountInfo.
func FactorFor(debt, collateralValueUSD sdkmath.Int) sdkmath.Int {
	if debt.IsZero() {
		return types.MaxHealthFactor
	}
	adjusted := collateralValueUSD.Mul(types.LiquidationThreshold).Quo(types.LiquidationPrecision)
	return adjusted.Mul(types.Precision).Quo(debt)
}

// AssertHealthy fails with ErrHealthFactorBelowMinimum (wrapped in a
// BreaksHealthError carrying the factor) when the participant's position is
// under the minimum ratio.
func (e *Engine) AssertHealthy(ctx context.Context, participant string) error {
	factor, err := e.HealthFactor(ctx, participant)
	if err != nil {
		return err
	}
	if factor.LT(types.MinHealthFactor) {
		return &BreaksHealthError{Participant: participant, Factor: factor}
	}
	return nil
}
