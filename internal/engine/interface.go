package engine

import (
	sdkmath "cosmossdk.io/math"

	"github.com/stablecore/sce/internal/types"
)

// DebtToken is the unit-of-account token capability the engine calls but
// does not implement. Every method either succeeds or returns an error; the
// engine maps any error into the failure of the enclosing operation.
type DebtToken interface {
	// Mint issues amount of debt token to account.
	Mint(account string, amount sdkmath.Int) error

	// Burn destroys amount of debt token held by the engine's custody
	// account.
	Burn(amount sdkmath.Int) error

	// TransferFrom moves amount of debt token between accounts.
	TransferFrom(from, to string, amount sdkmath.Int) error
}

// AssetTransfer is the collateral transfer capability. The engine uses it to
// pull pledged collateral into custody and to send collateral back out.
type AssetTransfer interface {
	// TransferFrom moves amount of denom between arbitrary accounts.
	TransferFrom(from, to, denom string, amount sdkmath.Int) error

	// Transfer sends amount of denom out of the engine's custody account.
	Transfer(to, denom string, amount sdkmath.Int) error
}

// EventSink receives the structured records emitted by mutating operations.
// Sink failures are logged, never propagated: the ledger mutation already
// happened and the record is a notification, not part of the transition.
type EventSink interface {
	Record(ev types.EventRecord) error
}
