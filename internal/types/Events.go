/*

Structured event records emitted by the collateral engine. Deposits,
redemptions and liquidations each produce one record so an external observer
can reconstruct ledger history. Records are persisted by the state package
and surfaced over the web API.

*/

package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
	sdktypes "github.com/cosmos/cosmos-sdk/types"
)

// EventKind labels the operation that produced an event record.
type EventKind string

const (
	EventDeposit     EventKind = "DEPOSIT"
	EventRedeem      EventKind = "REDEEM"
	EventLiquidation EventKind = "LIQUIDATION"
)

// EventRecord is one observable ledger mutation.
//
// For DEPOSIT and REDEEM, Participant is the position owner and Collateral
// the coin moved. For LIQUIDATION, Participant is the liquidated target,
// Counterparty the liquidator, Collateral the total seized coin and
// DebtCovered the debt the liquidator paid down.
type EventRecord struct {
	ID           string        `json:"id"`
	Kind         EventKind     `json:"kind"`
	Participant  string        `json:"participant"`
	Counterparty string        `json:"counterparty,omitempty"`
	Collateral   sdktypes.Coin `json:"collateral"`
	DebtCovered  sdkmath.Int   `json:"debt_covered"`
	Timestamp    time.Time     `json:"timestamp"`
}
