/*

CollateralEngine: the orchestrator behind every public operation. Each
mutating operation runs the same shape: validate, mutate the ledger, call
the external collaborator, then let the risk engine gate the result. Event
records are emitted only once the whole operation has succeeded, so an
aborted operation never leaves a phantom record in the journal. One mutex
serializes all mutating operations; no operation yields control
mid-mutation, so collaborators can never observe or re-enter a half-applied
transition.

The host environment owns atomic rollback: when a collaborator call fails
after a ledger mutation, the operation surfaces the error and expects the
caller's transaction layer to discard the whole state transition.

*/

package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	sdktypes "github.com/cosmos/cosmos-sdk/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stablecore/sce/internal/ledger"
	"github.com/stablecore/sce/internal/logger"
	"github.com/stablecore/sce/internal/registry"
	"github.com/stablecore/sce/internal/risk"
	"github.com/stablecore/sce/internal/types"
	"github.com/stablecore/sce/internal/valuation"
)

var (
	// ErrZeroAmount is returned when an operation receives a non-positive
	// amount.
	ErrZeroAmount = errors.New("amount must be positive")

	// ErrTransferFailed is returned when an external transfer collaborator
	// reports failure.
	ErrTransferFailed = errors.New("collateral transfer failed")

	// ErrMintFailed is returned when the debt token collaborator rejects a
	// mint.
	ErrMintFailed = errors.New("debt token mint failed")

	// ErrHealthFactorOk is returned when liquidation targets a healthy
	// position.
	ErrHealthFactorOk = errors.New("target health factor is not below minimum")

	// ErrHealthFactorNotImproved is returned when a liquidation fails to
	// raise the target's health factor.
	ErrHealthFactorNotImproved = errors.New("liquidation did not improve target health factor")
)

// Engine owns the ledger and composes registry, valuation and risk into the
// public operation set.
type Engine struct {
	mu sync.Mutex

	logger    zerolog.Logger
	registry  *registry.Registry
	ledger    *ledger.Ledger
	valuation *valuation.Service
	risk      *risk.Engine
	debt      DebtToken
	transfers AssetTransfer
	sink      EventSink

	// custody is the account holding pledged collateral and debt tokens in
	// flight during a burn.
	custody string
}

// Config holds the collaborators for creating a new Engine instance.
type Config struct {
	Registry       *registry.Registry
	DebtToken      DebtToken
	AssetTransfer  AssetTransfer
	EventSink      EventSink
	CustodyAccount string
}

// New creates an Engine with dependency injection.
func New(cfg Config) (*Engine, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("engine configuration validation failed: %w", err)
	}

	led := ledger.NewLedger()
	val := valuation.NewService(cfg.Registry)

	e := &Engine{
		logger:    logger.GetForComponent("collateral_engine"),
		registry:  cfg.Registry,
		ledger:    led,
		valuation: val,
		risk:      risk.NewEngine(led, val),
		debt:      cfg.DebtToken,
		transfers: cfg.AssetTransfer,
		sink:      cfg.EventSink,
		custody:   cfg.CustodyAccount,
	}

	e.logger.Info().
		Str("custody", e.custody).
		Strs("assets", e.registry.ApprovedAssets()).
		Msg("Collateral engine created")
	return e, nil
}

func validateConfig(cfg Config) error {
	if cfg.Registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	if cfg.DebtToken == nil {
		return fmt.Errorf("debt token collaborator cannot be nil")
	}
	if cfg.AssetTransfer == nil {
		return fmt.Errorf("asset transfer collaborator cannot be nil")
	}
	if cfg.EventSink == nil {
		return fmt.Errorf("event sink cannot be nil")
	}
	if cfg.CustodyAccount == "" {
		return fmt.Errorf("custody account cannot be empty")
	}
	return nil
}

// --- public mutating operations ---

// Deposit pledges amount of asset from participant into custody. Like every
// mutating operation it closes with the health gate: a position still below
// the minimum after the deposit is rejected as a whole.
func (e *Engine) Deposit(ctx context.Context, participant, asset string, amount sdkmath.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.deposit(ctx, participant, asset, amount)
}

// Withdraw releases amount of asset back to participant. Rejected as a whole
// when the remaining position would breach the minimum health factor.
func (e *Engine) Withdraw(ctx context.Context, participant, asset string, amount sdkmath.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.withdraw(ctx, participant, asset, amount)
}

// MintDebt issues amount of unit-of-account debt against participant's
// collateral. Minting beyond capacity is rejected before the external mint
// call runs.
func (e *Engine) MintDebt(ctx context.Context, participant string, amount sdkmath.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mintDebt(ctx, participant, amount)
}

// BurnDebt retires amount of participant's debt, paid by payer. payer may
// differ from participant; liquidation depends on that. The closing health
// gate rejects a partial burn that leaves the position below the minimum.
func (e *Engine) BurnDebt(ctx context.Context, participant, payer string, amount sdkmath.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.burnDebt(ctx, participant, payer, amount)
}

// DepositAndMint composes Deposit then MintDebt under one serialization
// window.
func (e *Engine) DepositAndMint(ctx context.Context, participant, asset string, collateralAmount, debtAmount sdkmath.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.deposit(ctx, participant, asset, collateralAmount); err != nil {
		return err
	}
	return e.mintDebt(ctx, participant, debtAmount)
}

// RedeemForBurn composes BurnDebt then Withdraw under one serialization
// window.
func (e *Engine) RedeemForBurn(ctx context.Context, participant, asset string, collateralAmount, debtAmount sdkmath.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.burnDebt(ctx, participant, participant, debtAmount); err != nil {
		return err
	}
	return e.withdraw(ctx, participant, asset, collateralAmount)
}

// Liquidate lets liquidator close part of target's undercollateralized
// position: the liquidator pays debtToCover of target's debt and receives
// the equivalent collateral plus the liquidation bonus.
func (e *Engine) Liquidate(ctx context.Context, liquidator, target, asset string, debtToCover sdkmath.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := requirePositive(debtToCover); err != nil {
		return err
	}
	if !e.registry.IsApproved(asset) {
		return fmt.Errorf("%w: %s", registry.ErrAssetNotApproved, asset)
	}

	startingFactor, err := e.risk.HealthFactor(ctx, target)
	if err != nil {
		return err
	}
	if startingFactor.GTE(types.MinHealthFactor) {
		return fmt.Errorf("%w: %s has factor %s", ErrHealthFactorOk, target, startingFactor)
	}

	seizedBase, err := e.valuation.TokenAmountFromUSD(ctx, asset, debtToCover)
	if err != nil {
		return err
	}
	bonus := seizedBase.Mul(types.LiquidationBonus).Quo(types.LiquidationPrecision)
	totalSeized := seizedBase.Add(bonus)

	// Hard failure when the target does not hold enough collateral; partial
	// fills are not supported.
	if err := e.redeemCollateral(target, liquidator, asset, totalSeized); err != nil {
		return err
	}
	if err := e.burnDebtFor(target, liquidator, debtToCover); err != nil {
		return err
	}

	endingFactor, err := e.risk.HealthFactor(ctx, target)
	if err != nil {
		return err
	}
	if endingFactor.LTE(startingFactor) {
		return fmt.Errorf("%w: %s -> %s", ErrHealthFactorNotImproved, startingFactor, endingFactor)
	}

	// The liquidator's own pre-existing position must stay healthy. A
	// liquidator with no debt passes trivially.
	if err := e.risk.AssertHealthy(ctx, liquidator); err != nil {
		return err
	}

	e.emit(redeemRecord(target, liquidator, asset, totalSeized))
	e.emit(types.EventRecord{
		ID:           uuid.New().String(),
		Kind:         types.EventLiquidation,
		Participant:  target,
		Counterparty: liquidator,
		Collateral:   sdktypes.NewCoin(asset, totalSeized),
		DebtCovered:  debtToCover,
		Timestamp:    time.Now(),
	})

	e.logger.Info().
		Str("liquidator", liquidator).
		Str("target", target).
		Str("asset", asset).
		Str("debtCovered", debtToCover.String()).
		Str("seized", totalSeized.String()).
		Str("startingFactor", startingFactor.String()).
		Str("endingFactor", endingFactor.String()).
		Msg("Position liquidated")
	return nil
}

// --- operation bodies (callers hold e.mu) ---

func (e *Engine) deposit(ctx context.Context, participant, asset string, amount sdkmath.Int) error {
	if err := requirePositive(amount); err != nil {
		return err
	}
	if !e.registry.IsApproved(asset) {
		return fmt.Errorf("%w: %s", registry.ErrAssetNotApproved, asset)
	}

	e.ledger.CreditCollateral(participant, asset, amount)

	if err := e.transfers.TransferFrom(participant, e.custody, asset, amount); err != nil {
		return fmt.Errorf("%w: pulling %s %s from %s: %w", ErrTransferFailed, amount, asset, participant, err)
	}
	if err := e.risk.AssertHealthy(ctx, participant); err != nil {
		return err
	}

	e.emit(types.EventRecord{
		ID:          uuid.New().String(),
		Kind:        types.EventDeposit,
		Participant: participant,
		Collateral:  sdktypes.NewCoin(asset, amount),
		DebtCovered: sdkmath.ZeroInt(),
		Timestamp:   time.Now(),
	})

	e.logger.Info().
		Str("participant", participant).
		Str("asset", asset).
		Str("amount", amount.String()).
		Msg("Collateral deposited")
	return nil
}

func (e *Engine) withdraw(ctx context.Context, participant, asset string, amount sdkmath.Int) error {
	if err := requirePositive(amount); err != nil {
		return err
	}
	if !e.registry.IsApproved(asset) {
		return fmt.Errorf("%w: %s", registry.ErrAssetNotApproved, asset)
	}

	if err := e.redeemCollateral(participant, participant, asset, amount); err != nil {
		return err
	}
	if err := e.risk.AssertHealthy(ctx, participant); err != nil {
		return err
	}

	e.emit(redeemRecord(participant, participant, asset, amount))

	e.logger.Info().
		Str("participant", participant).
		Str("asset", asset).
		Str("amount", amount.String()).
		Msg("Collateral withdrawn")
	return nil
}

func (e *Engine) mintDebt(ctx context.Context, participant string, amount sdkmath.Int) error {
	if err := requirePositive(amount); err != nil {
		return err
	}

	e.ledger.AddDebt(participant, amount)

	// Capacity is enforced before the external mint call runs.
	if err := e.risk.AssertHealthy(ctx, participant); err != nil {
		return err
	}
	if err := e.debt.Mint(participant, amount); err != nil {
		return fmt.Errorf("%w: minting %s to %s: %w", ErrMintFailed, amount, participant, err)
	}

	e.logger.Info().
		Str("participant", participant).
		Str("amount", amount.String()).
		Msg("Debt minted")
	return nil
}

func (e *Engine) burnDebt(ctx context.Context, participant, payer string, amount sdkmath.Int) error {
	if err := requirePositive(amount); err != nil {
		return err
	}
	if err := e.burnDebtFor(participant, payer, amount); err != nil {
		return err
	}
	if err := e.risk.AssertHealthy(ctx, participant); err != nil {
		return err
	}

	e.logger.Info().
		Str("participant", participant).
		Str("payer", payer).
		Str("amount", amount.String()).
		Msg("Debt burned")
	return nil
}

// redeemCollateral debits from's balance and sends the asset out of custody
// to recipient. Callers emit the redemption record once their whole
// operation has succeeded.
func (e *Engine) redeemCollateral(from, recipient, asset string, amount sdkmath.Int) error {
	if err := e.ledger.DebitCollateral(from, asset, amount); err != nil {
		return err
	}
	if err := e.transfers.Transfer(recipient, asset, amount); err != nil {
		return fmt.Errorf("%w: sending %s %s to %s: %w", ErrTransferFailed, amount, asset, recipient, err)
	}
	return nil
}

func redeemRecord(from, recipient, asset string, amount sdkmath.Int) types.EventRecord {
	return types.EventRecord{
		ID:           uuid.New().String(),
		Kind:         types.EventRedeem,
		Participant:  from,
		Counterparty: recipient,
		Collateral:   sdktypes.NewCoin(asset, amount),
		DebtCovered:  sdkmath.ZeroInt(),
		Timestamp:    time.Now(),
	}
}

// burnDebtFor reduces participant's issued debt, pulls the debt token from
// payer into custody and burns it.
func (e *Engine) burnDebtFor(participant, payer string, amount sdkmath.Int) error {
	if err := e.ledger.ReduceDebt(participant, amount); err != nil {
		return err
	}
	if err := e.debt.TransferFrom(payer, e.custody, amount); err != nil {
		return fmt.Errorf("%w: pulling %s debt token from %s: %w", ErrTransferFailed, amount, payer, err)
	}
	if err := e.debt.Burn(amount); err != nil {
		return fmt.Errorf("debt burn failed: %w", err)
	}
	return nil
}

func requirePositive(amount sdkmath.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return ErrZeroAmount
	}
	return nil
}

func (e *Engine) emit(ev types.EventRecord) {
	if err := e.sink.Record(ev); err != nil {
		e.logger.Error().
			Err(err).
			Str("kind", string(ev.Kind)).
			Str("participant", ev.Participant).
			Msg("Failed to record engine event")
	}
}

// --- read-only queries ---

// AccountInfo returns participant's debt and total collateral value.
func (e *Engine) AccountInfo(ctx context.Context, participant string) (types.AccountInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.risk.AccountInfo(ctx, participant)
}

// HealthFactor returns participant's current health factor.
func (e *Engine) HealthFactor(ctx context.Context, participant string) (sdkmath.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.risk.HealthFactor(ctx, participant)
}

// TotalCollateralValueUSD values all of participant's pledged collateral.
func (e *Engine) TotalCollateralValueUSD(ctx context.Context, participant string) (sdkmath.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.valuation.TotalCollateralValueUSD(ctx, e.ledger.Snapshot(participant))
}

// ValueInUSD converts an asset amount to unit-of-account value.
func (e *Engine) ValueInUSD(ctx context.Context, asset string, amount sdkmath.Int) (sdkmath.Int, error) {
	return e.valuation.ValueInUSD(ctx, asset, amount)
}

// TokenAmountFromUSD converts a unit-of-account value to an asset amount.
func (e *Engine) TokenAmountFromUSD(ctx context.Context, asset string, usdAmount sdkmath.Int) (sdkmath.Int, error) {
	return e.valuation.TokenAmountFromUSD(ctx, asset, usdAmount)
}

// ListApprovedAssets returns the registry's asset list in registration
// order.
func (e *Engine) ListApprovedAssets() []string {
	return e.registry.ApprovedAssets()
}

// Position returns a snapshot of participant's ledger state.
func (e *Engine) Position(participant string) types.Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Snapshot(participant)
}

// CollateralBalanceOf returns participant's pledged balance of asset.
func (e *Engine) CollateralBalanceOf(participant, asset string) sdkmath.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.CollateralBalance(participant, asset)
}

// Participants lists every account the ledger has seen.
func (e *Engine) Participants() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.Participants()
}
