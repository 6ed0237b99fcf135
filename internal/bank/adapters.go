package bank

import sdkmath "cosmossdk.io/math"

// DebtTokenView exposes a Bank as the engine's debt token collaborator.
// Burns draw from the custody account, where the engine parks debt tokens
// pulled in during a burn.
type DebtTokenView struct {
	bank    *Bank
	custody string
}

// NewDebtTokenView wraps bank for debt token operations against custody.
func NewDebtTokenView(bank *Bank, custody string) *DebtTokenView {
	return &DebtTokenView{bank: bank, custody: custody}
}

func (v *DebtTokenView) Mint(account string, amount sdkmath.Int) error {
	return v.bank.mintDebt(account, amount)
}

func (v *DebtTokenView) Burn(amount sdkmath.Int) error {
	return v.bank.burnDebt(v.custody, amount)
}

func (v *DebtTokenView) TransferFrom(from, to string, amount sdkmath.Int) error {
	return v.bank.Send(from, to, v.bank.debtDenom, amount)
}

// AssetTransferView exposes a Bank as the engine's collateral transfer
// collaborator. Plain Transfer sends out of the custody account.
type AssetTransferView struct {
	bank    *Bank
	custody string
}

// NewAssetTransferView wraps bank for collateral movement against custody.
func NewAssetTransferView(bank *Bank, custody string) *AssetTransferView {
	return &AssetTransferView{bank: bank, custody: custody}
}

func (v *AssetTransferView) TransferFrom(from, to, denom string, amount sdkmath.Int) error {
	return v.bank.Send(from, to, denom, amount)
}

func (v *AssetTransferView) Transfer(to, denom string, amount sdkmath.Int) error {
	return v.bank.Send(v.custody, to, denom, amount)
}
