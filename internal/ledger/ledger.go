/*

PositionLedger: per-participant collateral balances and issued debt. The
ledger is a plain keyed store owned by the collateral engine; it performs no
locking of its own because the engine serializes every mutating operation.
Positions are created lazily on first credit and never destroyed, their
entries simply return to zero.

*/

package ledger

import (
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/stablecore/sce/internal/types"
)

var (
	// ErrInsufficientCollateral is returned when a debit would push a
	// collateral balance below zero.
	ErrInsufficientCollateral = errors.New("insufficient collateral balance")

	// ErrInsufficientDebt is returned when a reduction would push issued
	// debt below zero.
	ErrInsufficientDebt = errors.New("insufficient issued debt")
)

type position struct {
	collateral map[string]sdkmath.Int
	debt       sdkmath.Int
}

// Ledger owns all position records. Participants hold only their string
// identifier, never a reference into the ledger.
type Ledger struct {
	positions map[string]*position
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{positions: make(map[string]*position)}
}

func (l *Ledger) ensure(participant string) *position {
	pos, ok := l.positions[participant]
	if !ok {
		pos = &position{
			collateral: make(map[string]sdkmath.Int),
			debt:       sdkmath.ZeroInt(),
		}
		l.positions[participant] = pos
	}
	return pos
}

// CreditCollateral increases the participant's balance of asset.
func (l *Ledger) CreditCollateral(participant, asset string, amount sdkmath.Int) {
	pos := l.ensure(participant)
	current, ok := pos.collateral[asset]
	if !ok {
		current = sdkmath.ZeroInt()
	}
	pos.collateral[asset] = current.Add(amount)
}

// DebitCollateral decreases the participant's balance of asset, failing with
// ErrInsufficientCollateral when the balance would go negative.
func (l *Ledger) DebitCollateral(participant, asset string, amount sdkmath.Int) error {
	pos := l.ensure(participant)
	current, ok := pos.collateral[asset]
	if !ok {
		current = sdkmath.ZeroInt()
	}
	if current.LT(amount) {
		return fmt.Errorf("%w: %s holds %s %s, needs %s", ErrInsufficientCollateral,
			participant, current, asset, amount)
	}
	pos.collateral[asset] = current.Sub(amount)
	return nil
}

// AddDebt increases the participant's issued debt.
func (l *Ledger) AddDebt(participant string, amount sdkmath.Int) {
	pos := l.ensure(participant)
	pos.debt = pos.debt.Add(amount)
}

// ReduceDebt decreases the participant's issued debt, failing with
// ErrInsufficientDebt when it would go negative.
func (l *Ledger) ReduceDebt(participant string, amount sdkmath.Int) error {
	pos := l.ensure(participant)
	if pos.debt.LT(amount) {
		return fmt.Errorf("%w: %s owes %s, cannot reduce by %s", ErrInsufficientDebt,
			participant, pos.debt, amount)
	}
	pos.debt = pos.debt.Sub(amount)
	return nil
}

// Debt returns the participant's issued debt, zero for unknown participants.
func (l *Ledger) Debt(participant string) sdkmath.Int {
	if pos, ok := l.positions[participant]; ok {
		return pos.debt
	}
	return sdkmath.ZeroInt()
}

// CollateralBalance returns the participant's balance of asset, zero when
// never deposited.
func (l *Ledger) CollateralBalance(participant, asset string) sdkmath.Int {
	if pos, ok := l.positions[participant]; ok {
		if amount, ok := pos.collateral[asset]; ok {
			return amount
		}
	}
	return sdkmath.ZeroInt()
}

// Snapshot returns a deep copy of the participant's position. Safe to hand
// to valuation or callers; mutating it never touches ledger state.
func (l *Ledger) Snapshot(participant string) types.Position {
	snapshot := types.Position{
		Collateral: make(map[string]sdkmath.Int),
		Debt:       sdkmath.ZeroInt(),
	}
	pos, ok := l.positions[participant]
	if !ok {
		return snapshot
	}
	for asset, amount := range pos.collateral {
		snapshot.Collateral[asset] = amount
	}
	snapshot.Debt = pos.debt
	return snapshot
}

// Participants returns every identifier the ledger has seen, in no
// particular order. Used by the read-only API.
func (l *Ledger) Participants() []string {
	out := make([]string, 0, len(l.positions))
	for participant := range l.positions {
		out = append(out, participant)
	}
	return out
}
