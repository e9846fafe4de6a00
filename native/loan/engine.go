package loan

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"bigbangchain/core/events"
	"bigbangchain/core/types"
	"bigbangchain/crypto"
	"bigbangchain/native/common"
	"bigbangchain/native/params"
	"bigbangchain/native/registry"
)

var (
	ErrInvalidAmount         = errors.New("loan engine: amount must be positive")
	ErrInsufficientValue     = errors.New("loan engine: collateral value too small to borrow against")
	ErrInsufficientBalance   = errors.New("loan engine: insufficient balance")
	ErrInsufficientLiquidity = errors.New("loan engine: insufficient liquidity")
	ErrTransferFailed        = errors.New("loan engine: asset transfer failed")
	ErrLoanNotFound          = errors.New("loan engine: loan not found")
	ErrUnsupportedAsset      = errors.New("loan engine: unsupported asset")
	ErrInvalidOraclePrice    = errors.New("loan engine: oracle returned non-positive price")
	ErrArithmeticOverflow    = errors.New("loan engine: arithmetic overflow")

	errNilState = errors.New("loan engine: state not configured")
	errNilFeed  = errors.New("loan engine: price feed not configured")
)

const moduleName = "loan"

const secondsPerDay = 86_400

type engineState interface {
	GetLoan(borrower, asset crypto.Address) (*Loan, error)
	PutLoan(loan *Loan) error
	DeleteLoan(borrower, asset crypto.Address) error
	GetAggregates() (*Aggregates, error)
	PutAggregates(agg *Aggregates) error
	GetAccount(addr crypto.Address) (*types.Account, error)
	PutAccount(addr crypto.Address, account *types.Account) error
}

// Engine prices the synthetic asset, converts collateral deposits into borrow
// limits, and drives the loan lifecycle. It is invoked synchronously by the
// host; every mutating entry point runs under the shared reentrancy guard and
// either fully completes or leaves state untouched.
type Engine struct {
	state         engineState
	params        *params.Store
	registry      *registry.Registry
	feed          PriceFeed
	tokens        TokenBackend
	roles         common.RoleView
	pauses        common.PauseView
	guard         *common.ReentrancyGuard
	emitter       events.Emitter
	nowFn         func() time.Time
	moduleAddress crypto.Address
	synthetic     crypto.Address
	native        crypto.Address
}

// NewEngine constructs a loan engine bound to its custody address, the two
// implicit asset addresses, and its parameter and registry collaborators.
func NewEngine(moduleAddr, synthetic, native crypto.Address, store *params.Store, reg *registry.Registry) *Engine {
	return &Engine{
		params:        store,
		registry:      reg,
		guard:         &common.ReentrancyGuard{},
		emitter:       events.NoopEmitter{},
		nowFn:         func() time.Time { return time.Now().UTC() },
		moduleAddress: moduleAddr,
		synthetic:     synthetic,
		native:        native,
	}
}

// SetState wires the engine to the external persistence layer.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetPriceFeed wires the read-only oracle service.
func (e *Engine) SetPriceFeed(feed PriceFeed) {
	if e == nil {
		return
	}
	e.feed = feed
}

// SetTokenBackend wires the transfer capability for external collateral
// tokens.
func (e *Engine) SetTokenBackend(tokens TokenBackend) {
	if e == nil {
		return
	}
	e.tokens = tokens
}

// SetRoles wires the role table consulted by gated entry points.
func (e *Engine) SetRoles(roles common.RoleView) {
	if e == nil {
		return
	}
	e.roles = roles
}

func (e *Engine) SetPauses(p common.PauseView) {
	if e == nil {
		return
	}
	e.pauses = p
}

// SetGuard shares a reentrancy guard with the other mutating engines. The
// guard is process-wide, one flag for every entry point.
func (e *Engine) SetGuard(guard *common.ReentrancyGuard) {
	if e == nil || guard == nil {
		return
	}
	e.guard = guard
}

// SetEmitter configures the event emitter. Nil resets to a no-op sink.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used for expiration stamps. Nil
// restores the default UTC clock.
func (e *Engine) SetNowFunc(now func() time.Time) {
	if now == nil {
		e.nowFn = func() time.Time { return time.Now().UTC() }
		return
	}
	e.nowFn = now
}

func (e *Engine) emit(event events.Event) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(event)
}

func (e *Engine) now() time.Time {
	if e == nil || e.nowFn == nil {
		return time.Now().UTC()
	}
	return e.nowFn()
}

// EstimateSyntheticPrice derives the synthetic asset price from protocol
// usage: the ratio of total backing value to outstanding supply, clamped to
// the configured corridor. While nothing is lent out it returns the fixed
// default price. Integer floor division only; callers tolerate truncation.
func (e *Engine) EstimateSyntheticPrice() (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	agg, err := e.ensureAggregates()
	if err != nil {
		return nil, err
	}
	if agg.LentOut.Sign() == 0 {
		return new(big.Int).Set(defaultSyntheticPrice), nil
	}
	p, err := e.params.Parameters()
	if err != nil {
		return nil, err
	}
	derived := flooredDiv(agg.CollateralValue, agg.LentOut)
	return clampPrice(derived, p.LowestPrice, p.HighestPrice), nil
}

// FetchPrice resolves the asset's current price in the engine's 18-decimal
// unit. The synthetic asset prices through the configured base-network feed;
// the native settlement asset has no feed because it is the value unit.
func (e *Engine) FetchPrice(asset crypto.Address) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if e.feed == nil {
		return nil, errNilFeed
	}
	if asset.Equal(e.native) {
		return nil, ErrUnsupportedAsset
	}
	var feedRef crypto.Address
	if asset.Equal(e.synthetic) {
		p, err := e.params.Parameters()
		if err != nil {
			return nil, err
		}
		feedRef = p.BaseFeed
	} else {
		ref, err := e.registry.PriceFeed(asset)
		if err != nil {
			if errors.Is(err, registry.ErrNotSupported) {
				return nil, ErrUnsupportedAsset
			}
			return nil, err
		}
		feedRef = ref
	}
	sample, err := e.feed.LatestPrice(feedRef)
	if err != nil {
		return nil, err
	}
	if sample.Answer == nil || sample.Answer.Sign() <= 0 {
		return nil, ErrInvalidOraclePrice
	}
	return checkedMul(sample.Answer, feedScale)
}

// EstimateLoan computes the borrowing power of a collateral amount: its
// valuation at the current feed price, capped by the loan-to-value limit, then
// converted to synthetic units at the estimated synthetic price. Both the
// loan amount and the collateral valuation are returned.
func (e *Engine) EstimateLoan(asset crypto.Address, collateralAmount *big.Int) (*big.Int, *big.Int, error) {
	if e == nil || e.state == nil {
		return nil, nil, errNilState
	}
	if collateralAmount == nil || collateralAmount.Sign() <= 0 {
		return nil, nil, ErrInvalidAmount
	}
	supported, err := e.registry.IsSupported(asset)
	if err != nil {
		return nil, nil, err
	}
	if !supported {
		return nil, nil, ErrUnsupportedAsset
	}
	price, err := e.FetchPrice(asset)
	if err != nil {
		return nil, nil, err
	}
	collateralValue, err := checkedMul(price, collateralAmount)
	if err != nil {
		return nil, nil, err
	}
	p, err := e.params.Parameters()
	if err != nil {
		return nil, nil, err
	}
	limited, err := checkedMul(collateralValue, new(big.Int).SetUint64(p.LendingLimitationPercent))
	if err != nil {
		return nil, nil, err
	}
	limited = flooredDiv(limited, oneHundred)
	synthPrice, err := e.EstimateSyntheticPrice()
	if err != nil {
		return nil, nil, err
	}
	return flooredDiv(limited, synthPrice), collateralValue, nil
}

// Borrow locks the caller's collateral and pays out the estimated synthetic
// amount, stamping the loan with an expiry of now plus the configured
// repayment period. A second borrow against the same (borrower, asset) pair
// overwrites the open loan rather than compounding it; the behaviour matches
// the deployed contract and is covered by a dedicated test.
func (e *Engine) Borrow(borrower, asset crypto.Address, collateralAmount *big.Int) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if err := e.guard.Enter(); err != nil {
		return nil, err
	}
	defer e.guard.Exit()
	if err := common.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	if collateralAmount == nil || collateralAmount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}

	loanAmount, collateralValue, err := e.EstimateLoan(asset, collateralAmount)
	if err != nil {
		return nil, err
	}
	if loanAmount.Sign() == 0 {
		return nil, ErrInsufficientValue
	}

	p, err := e.params.Parameters()
	if err != nil {
		return nil, err
	}

	custodyAcc, err := e.ensureAccount(e.moduleAddress)
	if err != nil {
		return nil, err
	}
	borrowerAcc, err := e.ensureAccount(borrower)
	if err != nil {
		return nil, err
	}
	if custodyAcc.BalanceBBG.Cmp(loanAmount) < 0 {
		return nil, ErrTransferFailed
	}

	// Pull the collateral into custody. Synthetic collateral moves on the
	// ledger; external tokens go through the transfer capability.
	if asset.Equal(e.synthetic) {
		if borrowerAcc.BalanceBBG.Cmp(collateralAmount) < 0 {
			return nil, ErrInsufficientBalance
		}
		borrowerAcc.BalanceBBG = new(big.Int).Sub(borrowerAcc.BalanceBBG, collateralAmount)
		custodyAcc.BalanceBBG = new(big.Int).Add(custodyAcc.BalanceBBG, collateralAmount)
	} else {
		if e.tokens == nil {
			return nil, ErrTransferFailed
		}
		if err := e.tokens.TransferFrom(asset, borrower, e.moduleAddress, collateralAmount); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
		}
	}

	// Pay out the synthetic loan.
	custodyAcc.BalanceBBG = new(big.Int).Sub(custodyAcc.BalanceBBG, loanAmount)
	borrowerAcc.BalanceBBG = new(big.Int).Add(borrowerAcc.BalanceBBG, loanAmount)

	expiry := uint64(e.now().Unix()) + p.RepaymentPeriodDays*secondsPerDay
	record := &Loan{
		Borrower:   borrower,
		Asset:      asset,
		Collateral: new(big.Int).Set(collateralAmount),
		Borrowed:   new(big.Int).Set(loanAmount),
		Expiry:     expiry,
	}

	agg, err := e.ensureAggregates()
	if err != nil {
		return nil, err
	}
	agg.CollateralValue = new(big.Int).Add(agg.CollateralValue, collateralValue)
	agg.LentOut = new(big.Int).Add(agg.LentOut, loanAmount)

	if err := e.persistAccount(borrower, borrowerAcc); err != nil {
		return nil, err
	}
	if err := e.persistAccount(e.moduleAddress, custodyAcc); err != nil {
		return nil, err
	}
	if err := e.state.PutLoan(record); err != nil {
		return nil, err
	}
	if err := e.state.PutAggregates(agg); err != nil {
		return nil, err
	}

	e.emit(events.LoanBorrowed{
		Borrower:   addressBytes(borrower),
		Asset:      addressBytes(asset),
		Collateral: new(big.Int).Set(collateralAmount),
		Borrowed:   new(big.Int).Set(loanAmount),
		Expiry:     expiry,
	})
	return loanAmount, nil
}

// UnlockableCollateral returns how much collateral a repayment releases. The
// loan's recorded collateral is valued at the current price and divided by the
// outstanding debt to get a per-synthetic-unit valuation; scaling by the repay
// amount and dividing by the same current price lands back in token units.
// The price cancels algebraically, but the divisions run in this exact order
// so truncation matches the deployed contract.
func (e *Engine) UnlockableCollateral(borrower, asset crypto.Address, repayAmount *big.Int) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	record, err := e.state.GetLoan(borrower, asset)
	if err != nil {
		return nil, err
	}
	if !record.Exists() {
		return nil, ErrLoanNotFound
	}
	record.EnsureDefaults()
	price, err := e.FetchPrice(asset)
	if err != nil {
		return nil, err
	}
	return unlockableAmount(record, price, repayAmount)
}

func unlockableAmount(record *Loan, price, repayAmount *big.Int) (*big.Int, error) {
	if repayAmount == nil || repayAmount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	collateralValue, err := checkedMul(price, record.Collateral)
	if err != nil {
		return nil, err
	}
	unitValue := flooredDiv(collateralValue, record.Borrowed)
	scaled, err := checkedMul(unitValue, repayAmount)
	if err != nil {
		return nil, err
	}
	return flooredDiv(scaled, price), nil
}

// Repay burns down the caller's debt and releases the proportional collateral.
// The aggregate collateral-value total is decremented using the released
// amount re-priced at the current rate, which is deliberately not symmetric
// with the valuation recorded at borrow time.
func (e *Engine) Repay(borrower, asset crypto.Address, repayAmount *big.Int) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if err := e.guard.Enter(); err != nil {
		return nil, err
	}
	defer e.guard.Exit()
	if err := common.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	if repayAmount == nil || repayAmount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}

	record, err := e.state.GetLoan(borrower, asset)
	if err != nil {
		return nil, err
	}
	if !record.Exists() {
		return nil, ErrLoanNotFound
	}
	record.EnsureDefaults()
	if repayAmount.Cmp(record.Borrowed) > 0 {
		return nil, ErrInvalidAmount
	}

	price, err := e.FetchPrice(asset)
	if err != nil {
		return nil, err
	}
	unlock, err := unlockableAmount(record, price, repayAmount)
	if err != nil {
		return nil, err
	}

	borrowerAcc, err := e.ensureAccount(borrower)
	if err != nil {
		return nil, err
	}
	if borrowerAcc.BalanceBBG.Cmp(repayAmount) < 0 {
		return nil, ErrInsufficientBalance
	}
	custodyAcc, err := e.ensureAccount(e.moduleAddress)
	if err != nil {
		return nil, err
	}

	if err := e.checkCustody(custodyAcc, asset, unlock); err != nil {
		return nil, err
	}
	if err := e.releaseCollateral(custodyAcc, borrowerAcc, asset, borrower, unlock); err != nil {
		return nil, err
	}

	// Pull the repaid synthetic into custody.
	borrowerAcc.BalanceBBG = new(big.Int).Sub(borrowerAcc.BalanceBBG, repayAmount)
	custodyAcc.BalanceBBG = new(big.Int).Add(custodyAcc.BalanceBBG, repayAmount)

	record.Borrowed = new(big.Int).Sub(record.Borrowed, repayAmount)
	record.Collateral = new(big.Int).Sub(record.Collateral, unlock)
	if record.Collateral.Sign() < 0 {
		record.Collateral = big.NewInt(0)
	}

	releasedValue, err := checkedMul(price, unlock)
	if err != nil {
		return nil, err
	}
	agg, err := e.ensureAggregates()
	if err != nil {
		return nil, err
	}
	agg.LentOut = new(big.Int).Sub(agg.LentOut, repayAmount)
	if agg.LentOut.Sign() < 0 {
		agg.LentOut = big.NewInt(0)
	}
	agg.CollateralValue = new(big.Int).Sub(agg.CollateralValue, releasedValue)
	if agg.CollateralValue.Sign() < 0 {
		agg.CollateralValue = big.NewInt(0)
	}

	if err := e.persistAccount(borrower, borrowerAcc); err != nil {
		return nil, err
	}
	if err := e.persistAccount(e.moduleAddress, custodyAcc); err != nil {
		return nil, err
	}
	closed := !record.Exists()
	if closed {
		if err := e.state.DeleteLoan(borrower, asset); err != nil {
			return nil, err
		}
	} else {
		if err := e.state.PutLoan(record); err != nil {
			return nil, err
		}
	}
	if err := e.state.PutAggregates(agg); err != nil {
		return nil, err
	}

	e.emit(events.LoanRepaid{
		Borrower:  addressBytes(borrower),
		Asset:     addressBytes(asset),
		Repaid:    new(big.Int).Set(repayAmount),
		Released:  new(big.Int).Set(unlock),
		Remaining: new(big.Int).Set(record.Borrowed),
		Closed:    closed,
	})
	return unlock, nil
}

// WithdrawSmallAmounts releases residual sub-unit collateral on a debt-free
// position without a full repay flow. The window is strict: zero outstanding
// debt and a collateral amount strictly between zero and one whole unit.
func (e *Engine) WithdrawSmallAmounts(borrower, asset crypto.Address) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if err := e.guard.Enter(); err != nil {
		return nil, err
	}
	defer e.guard.Exit()
	if err := common.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}

	record, err := e.state.GetLoan(borrower, asset)
	if err != nil {
		return nil, err
	}
	if !record.Exists() {
		return nil, ErrLoanNotFound
	}
	record.EnsureDefaults()
	if record.Borrowed.Sign() != 0 {
		return nil, ErrInvalidAmount
	}
	if record.Collateral.Sign() <= 0 || record.Collateral.Cmp(oneToken) >= 0 {
		return nil, ErrInvalidAmount
	}

	dust := new(big.Int).Set(record.Collateral)
	price, err := e.FetchPrice(asset)
	if err != nil {
		return nil, err
	}
	releasedValue, err := checkedMul(price, dust)
	if err != nil {
		return nil, err
	}

	custodyAcc, err := e.ensureAccount(e.moduleAddress)
	if err != nil {
		return nil, err
	}
	borrowerAcc, err := e.ensureAccount(borrower)
	if err != nil {
		return nil, err
	}
	if err := e.checkCustody(custodyAcc, asset, dust); err != nil {
		return nil, err
	}
	if err := e.releaseCollateral(custodyAcc, borrowerAcc, asset, borrower, dust); err != nil {
		return nil, err
	}

	agg, err := e.ensureAggregates()
	if err != nil {
		return nil, err
	}
	agg.CollateralValue = new(big.Int).Sub(agg.CollateralValue, releasedValue)
	if agg.CollateralValue.Sign() < 0 {
		agg.CollateralValue = big.NewInt(0)
	}

	if err := e.persistAccount(borrower, borrowerAcc); err != nil {
		return nil, err
	}
	if err := e.persistAccount(e.moduleAddress, custodyAcc); err != nil {
		return nil, err
	}
	if err := e.state.DeleteLoan(borrower, asset); err != nil {
		return nil, err
	}
	if err := e.state.PutAggregates(agg); err != nil {
		return nil, err
	}

	e.emit(events.LoanDustWithdrawn{
		Borrower: addressBytes(borrower),
		Asset:    addressBytes(asset),
		Amount:   dust,
	})
	return dust, nil
}

// WithdrawOwnerShare pays accrued protocol revenue to the operator in the
// native settlement asset.
func (e *Engine) WithdrawOwnerShare(caller crypto.Address, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if err := e.guard.Enter(); err != nil {
		return err
	}
	defer e.guard.Exit()
	if err := common.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	if err := common.RequireRole(e.roles, common.RoleOwner, caller); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	p, err := e.params.Parameters()
	if err != nil {
		return err
	}
	if amount.Cmp(p.OwnerShare) > 0 {
		return ErrInvalidAmount
	}

	custodyAcc, err := e.ensureAccount(e.moduleAddress)
	if err != nil {
		return err
	}
	if custodyAcc.BalanceNative.Cmp(amount) < 0 {
		return ErrInsufficientLiquidity
	}
	callerAcc, err := e.ensureAccount(caller)
	if err != nil {
		return err
	}

	custodyAcc.BalanceNative = new(big.Int).Sub(custodyAcc.BalanceNative, amount)
	callerAcc.BalanceNative = new(big.Int).Add(callerAcc.BalanceNative, amount)

	if err := e.persistAccount(e.moduleAddress, custodyAcc); err != nil {
		return err
	}
	if err := e.persistAccount(caller, callerAcc); err != nil {
		return err
	}
	if err := e.params.DebitOwnerShare(amount); err != nil {
		return err
	}

	remaining := new(big.Int).Sub(p.OwnerShare, amount)
	e.emit(events.OwnerShareWithdrawn{
		Recipient: addressBytes(caller),
		Amount:    new(big.Int).Set(amount),
		Remaining: remaining,
	})
	return nil
}

// Loan returns the open position for a (borrower, asset) pair, or
// ErrLoanNotFound when no position exists.
func (e *Engine) Loan(borrower, asset crypto.Address) (*Loan, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	record, err := e.state.GetLoan(borrower, asset)
	if err != nil {
		return nil, err
	}
	if !record.Exists() {
		return nil, ErrLoanNotFound
	}
	record.EnsureDefaults()
	return record, nil
}

// Aggregates returns the current protocol-wide usage counters.
func (e *Engine) Aggregates() (*Aggregates, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.ensureAggregates()
}

// TokenCount mirrors the registry's supported-token counter.
func (e *Engine) TokenCount() (uint64, error) {
	if e == nil || e.registry == nil {
		return 0, errNilState
	}
	return e.registry.TokenCount()
}

func (e *Engine) ensureAggregates() (*Aggregates, error) {
	agg, err := e.state.GetAggregates()
	if err != nil {
		return nil, err
	}
	if agg == nil {
		agg = &Aggregates{}
	}
	agg.EnsureDefaults()
	return agg, nil
}

func (e *Engine) ensureAccount(addr crypto.Address) (*types.Account, error) {
	acc, err := e.state.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		acc = &types.Account{}
	}
	acc.EnsureDefaults()
	return acc, nil
}

func (e *Engine) persistAccount(addr crypto.Address, acc *types.Account) error {
	return e.state.PutAccount(addr, acc)
}

// checkCustody verifies the engine can cover a collateral release before any
// balance moves.
func (e *Engine) checkCustody(custody *types.Account, asset crypto.Address, amount *big.Int) error {
	switch {
	case asset.Equal(e.synthetic):
		if custody.BalanceBBG.Cmp(amount) < 0 {
			return ErrInsufficientLiquidity
		}
	case asset.Equal(e.native):
		if custody.BalanceNative.Cmp(amount) < 0 {
			return ErrInsufficientLiquidity
		}
	default:
		if e.tokens == nil {
			return ErrInsufficientLiquidity
		}
		balance, err := e.tokens.BalanceOf(asset, e.moduleAddress)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTransferFailed, err)
		}
		if balance == nil || balance.Cmp(amount) < 0 {
			return ErrInsufficientLiquidity
		}
	}
	return nil
}

// releaseCollateral moves collateral from custody back to the borrower. The
// implicit assets move on the ledger, external tokens through the capability.
func (e *Engine) releaseCollateral(custody, borrowerAcc *types.Account, asset, borrower crypto.Address, amount *big.Int) error {
	switch {
	case asset.Equal(e.synthetic):
		custody.BalanceBBG = new(big.Int).Sub(custody.BalanceBBG, amount)
		borrowerAcc.BalanceBBG = new(big.Int).Add(borrowerAcc.BalanceBBG, amount)
	case asset.Equal(e.native):
		custody.BalanceNative = new(big.Int).Sub(custody.BalanceNative, amount)
		borrowerAcc.BalanceNative = new(big.Int).Add(borrowerAcc.BalanceNative, amount)
	default:
		if err := e.tokens.Transfer(asset, borrower, amount); err != nil {
			return fmt.Errorf("%w: %v", ErrTransferFailed, err)
		}
	}
	return nil
}

func addressBytes(addr crypto.Address) [20]byte {
	var out [20]byte
	copy(out[:], addr.Bytes())
	return out
}
