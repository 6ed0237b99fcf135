/*

This file contains the position and account types the ledger and risk engine
operate on. Participants and collateral assets are identified by opaque
string handles (an account address and a token denom respectively).

*/

package types

import (
	sdkmath "cosmossdk.io/math"
)

// Position is a snapshot of one participant's state: collateral pledged per
// asset and the unit-of-account debt issued against it. Snapshots are value
// copies; mutating one never touches the ledger.
type Position struct {
	Collateral map[string]sdkmath.Int `json:"collateral"`
	Debt       sdkmath.Int            `json:"debt"`
}

// CollateralBalance returns the pledged amount for one asset, zero if the
// participant never deposited it.
func (p Position) CollateralBalance(asset string) sdkmath.Int {
	if amount, ok := p.Collateral[asset]; ok {
		return amount
	}
	return sdkmath.ZeroInt()
}

// AccountInfo is the read-only view the risk engine exposes: total debt
// issued and the risk-unadjusted USD value of all pledged collateral, both
// at Precision scale.
type AccountInfo struct {
	Debt               sdkmath.Int `json:"debt"`
	CollateralValueUSD sdkmath.Int `json:"collateral_value_usd"`
}
