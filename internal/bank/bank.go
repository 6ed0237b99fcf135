/*

In-memory balance book backing the engine's external collaborators. In a
deployment these calls land on a chain's bank and token modules; here the
same semantics run in-process so the engine can be exercised end to end.

Transfers fail naturally on insufficient funds, which is exactly the failure
surface the engine's rollback contract is written against.

*/

package bank

import (
	"errors"
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"
	sdktypes "github.com/cosmos/cosmos-sdk/types"
	"github.com/rs/zerolog"

	"github.com/stablecore/sce/internal/logger"
)

var (
	// ErrInsufficientFunds is returned when an account cannot cover a
	// transfer or burn.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidAmount is returned for nil or non-positive amounts.
	ErrInvalidAmount = errors.New("amount must be positive")
)

// Bank tracks per-account coin balances and the outstanding supply of the
// debt token.
type Bank struct {
	mu sync.Mutex

	logger    zerolog.Logger
	balances  map[string]sdktypes.Coins
	debtDenom string

	// debtSupply is the total amount of the debt token minted and not yet
	// burned.
	debtSupply sdkmath.Int
}

// NewBank creates an empty bank. debtDenom is the denom used for the
// unit-of-account debt token.
func NewBank(debtDenom string) *Bank {
	return &Bank{
		logger:     logger.GetForComponent("bank"),
		balances:   make(map[string]sdktypes.Coins),
		debtDenom:  debtDenom,
		debtSupply: sdkmath.ZeroInt(),
	}
}

// Fund credits account with amount of denom. Used to seed balances.
func (b *Bank) Fund(account, denom string, amount sdkmath.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.credit(account, denom, amount)
}

// BalanceOf returns account's balance of denom.
func (b *Bank) BalanceOf(account, denom string) sdkmath.Int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[account].AmountOf(denom)
}

// DebtSupply returns the outstanding debt token supply.
func (b *Bank) DebtSupply() sdkmath.Int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.debtSupply
}

// Send moves amount of denom from one account to another.
func (b *Bank) Send(from, to, denom string, amount sdkmath.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.send(from, to, denom, amount)
}

func (b *Bank) send(from, to, denom string, amount sdkmath.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if err := b.debit(from, denom, amount); err != nil {
		return err
	}
	b.credit(to, denom, amount)
	return nil
}

func (b *Bank) credit(account, denom string, amount sdkmath.Int) {
	b.balances[account] = b.balances[account].Add(sdktypes.NewCoin(denom, amount))
}

func (b *Bank) debit(account, denom string, amount sdkmath.Int) error {
	remaining, negative := b.balances[account].SafeSub(sdktypes.NewCoin(denom, amount))
	if negative {
		return fmt.Errorf("%w: %s holds %s %s, needs %s",
			ErrInsufficientFunds, account, b.balances[account].AmountOf(denom), denom, amount)
	}
	b.balances[account] = remaining
	return nil
}

// mintDebt issues amount of the debt token to account.
func (b *Bank) mintDebt(account string, amount sdkmath.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if amount.IsNil() || !amount.IsPositive() {
		return ErrInvalidAmount
	}
	b.credit(account, b.debtDenom, amount)
	b.debtSupply = b.debtSupply.Add(amount)
	b.logger.Debug().
		Str("account", account).
		Str("amount", amount.String()).
		Str("supply", b.debtSupply.String()).
		Msg("Debt token minted")
	return nil
}

// burnDebt destroys amount of the debt token held by account.
func (b *Bank) burnDebt(account string, amount sdkmath.Int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if amount.IsNil() || !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if err := b.debit(account, b.debtDenom, amount); err != nil {
		return err
	}
	b.debtSupply = b.debtSupply.Sub(amount)
	b.logger.Debug().
		Str("account", account).
		Str("amount", amount.String()).
		Str("supply", b.debtSupply.String()).
		Msg("Debt token burned")
	return nil
}
