package voting

import (
	"errors"
	"math/big"

	"bigbangchain/core/events"
	"bigbangchain/core/types"
	"bigbangchain/crypto"
	"bigbangchain/native/common"
	"bigbangchain/native/params"
)

var (
	ErrInvalidAmount       = errors.New("voting: weight must be positive")
	ErrUnknownParameter    = errors.New("voting: unknown parameter")
	ErrUnknownDirection    = errors.New("voting: unknown direction")
	ErrInsufficientBalance = errors.New("voting: insufficient balance for vote fee")

	errNilState = errors.New("voting: state not configured")
)

const moduleName = "voting"

// Parameter identifies the two protocol knobs governance can nudge.
type Parameter string

const (
	ParamLendingLimitation Parameter = "lendingLimitation"
	ParamRepaymentPeriod   Parameter = "repaymentPeriod"
)

// Direction is a requested nudge direction.
type Direction string

const (
	DirectionIncrease Direction = "increase"
	DirectionDecrease Direction = "decrease"
)

// Tally holds the four running vote-weight counters. Weights only ever grow;
// the majority is recomputed from the running totals on every vote.
type Tally struct {
	LimitIncrease  *big.Int
	LimitDecrease  *big.Int
	PeriodIncrease *big.Int
	PeriodDecrease *big.Int
}

// EnsureDefaults populates nil counters on decoded records.
func (t *Tally) EnsureDefaults() {
	if t == nil {
		return
	}
	if t.LimitIncrease == nil {
		t.LimitIncrease = big.NewInt(0)
	}
	if t.LimitDecrease == nil {
		t.LimitDecrease = big.NewInt(0)
	}
	if t.PeriodIncrease == nil {
		t.PeriodIncrease = big.NewInt(0)
	}
	if t.PeriodDecrease == nil {
		t.PeriodDecrease = big.NewInt(0)
	}
}

type voterState interface {
	VotingGetTally() (*Tally, error)
	VotingPutTally(tally *Tally) error
	GetAccount(addr crypto.Address) (*types.Account, error)
	PutAccount(addr crypto.Address, account *types.Account) error
}

// Engine accumulates weighted votes and, on each vote, recomputes the majority
// direction and asks the parameter store for a one-unit nudge. The fee scales
// with the vote weight but the effect is capped at one unit per vote; the
// asymmetry matches the deployed contract and is covered by a dedicated test.
type Engine struct {
	state         voterState
	params        *params.Store
	pauses        common.PauseView
	guard         *common.ReentrancyGuard
	emitter       events.Emitter
	moduleAddress crypto.Address
	custodyAddr   crypto.Address
}

// NewEngine constructs a voter bound to its module identity (which must hold
// RoleAdjuster in the parameter store) and the loan engine's custody address,
// where collected vote fees land.
func NewEngine(moduleAddr, custodyAddr crypto.Address, store *params.Store) *Engine {
	return &Engine{
		params:        store,
		guard:         &common.ReentrancyGuard{},
		emitter:       events.NoopEmitter{},
		moduleAddress: moduleAddr,
		custodyAddr:   custodyAddr,
	}
}

// SetState wires the engine to the external persistence layer.
func (e *Engine) SetState(state voterState) { e.state = state }

func (e *Engine) SetPauses(p common.PauseView) {
	if e == nil {
		return
	}
	e.pauses = p
}

// SetGuard shares the process-wide reentrancy guard with the loan engine.
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

func (e *Engine) emit(event events.Event) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(event)
}

// Vote charges weight times the configured vote fee in the native asset, adds
// the weight to the matching counter, and applies at most one single-unit
// parameter nudge when the running majority tips strictly to one side. Ties
// leave the parameter untouched, as does a majority already sitting at the
// adjustable floor or ceiling.
func (e *Engine) Vote(voter crypto.Address, parameter Parameter, direction Direction, weight *big.Int) error {
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
	if weight == nil || weight.Sign() <= 0 {
		return ErrInvalidAmount
	}
	switch parameter {
	case ParamLendingLimitation, ParamRepaymentPeriod:
	default:
		return ErrUnknownParameter
	}
	switch direction {
	case DirectionIncrease, DirectionDecrease:
	default:
		return ErrUnknownDirection
	}

	p, err := e.params.Parameters()
	if err != nil {
		return err
	}
	fee := new(big.Int).Mul(weight, p.VoteFee)

	voterAcc, err := e.ensureAccount(voter)
	if err != nil {
		return err
	}
	if voterAcc.BalanceNative.Cmp(fee) < 0 {
		return ErrInsufficientBalance
	}
	custodyAcc, err := e.ensureAccount(e.custodyAddr)
	if err != nil {
		return err
	}

	voterAcc.BalanceNative = new(big.Int).Sub(voterAcc.BalanceNative, fee)
	custodyAcc.BalanceNative = new(big.Int).Add(custodyAcc.BalanceNative, fee)

	if err := e.state.PutAccount(voter, voterAcc); err != nil {
		return err
	}
	if err := e.state.PutAccount(e.custodyAddr, custodyAcc); err != nil {
		return err
	}

	// The operator's cut of the fee accrues to the withdrawable owner share;
	// the full fee stays in custody so the share is always backed.
	ownerCut := new(big.Int).Mul(fee, new(big.Int).SetUint64(p.OwnerFeePercent))
	ownerCut.Quo(ownerCut, big.NewInt(100))
	if err := e.params.CreditOwnerShare(ownerCut); err != nil {
		return err
	}

	tally, err := e.ensureTally()
	if err != nil {
		return err
	}
	increase, decrease := tally.counters(parameter)
	if direction == DirectionIncrease {
		increase.Add(increase, weight)
	} else {
		decrease.Add(decrease, weight)
	}
	if err := e.state.VotingPutTally(tally); err != nil {
		return err
	}

	if err := e.applyMajority(parameter, p, increase, decrease); err != nil {
		return err
	}

	e.emit(events.VoteCast{
		Voter:     addressBytes(voter),
		Parameter: string(parameter),
		Direction: string(direction),
		Weight:    new(big.Int).Set(weight),
		Fee:       fee,
	})
	return nil
}

// Tally returns the current vote-weight counters.
func (e *Engine) Tally() (*Tally, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.ensureTally()
}

func (t *Tally) counters(parameter Parameter) (increase, decrease *big.Int) {
	if parameter == ParamLendingLimitation {
		return t.LimitIncrease, t.LimitDecrease
	}
	return t.PeriodIncrease, t.PeriodDecrease
}

func (e *Engine) applyMajority(parameter Parameter, p params.BusinessParameters, increase, decrease *big.Int) error {
	cmp := increase.Cmp(decrease)
	if cmp == 0 {
		return nil
	}

	var (
		delta    int
		dir      Direction
		current  uint64
		floor    uint64
		ceiling  uint64
	)
	if cmp > 0 {
		delta, dir = 1, DirectionIncrease
	} else {
		delta, dir = -1, DirectionDecrease
	}
	switch parameter {
	case ParamLendingLimitation:
		current = p.LendingLimitationPercent
		floor, ceiling = params.MinLendingLimitation, params.MaxLendingLimitation
	default:
		current = p.RepaymentPeriodDays
		floor, ceiling = params.MinAdjustableRepaymentPeriod, params.MaxAdjustableRepaymentPeriod
	}
	if delta > 0 && current >= ceiling {
		return nil
	}
	if delta < 0 && current <= floor {
		return nil
	}

	var (
		next uint64
		err  error
	)
	if parameter == ParamLendingLimitation {
		next, err = e.params.AdjustLendingLimitation(e.moduleAddress, delta)
	} else {
		next, err = e.params.AdjustRepaymentPeriod(e.moduleAddress, delta)
	}
	if err != nil {
		return err
	}

	e.emit(events.ParameterAdjusted{
		Parameter: string(parameter),
		Direction: string(dir),
		NewValue:  next,
	})
	return nil
}

func (e *Engine) ensureTally() (*Tally, error) {
	tally, err := e.state.VotingGetTally()
	if err != nil {
		return nil, err
	}
	if tally == nil {
		tally = &Tally{}
	}
	tally.EnsureDefaults()
	return tally, nil
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

func addressBytes(addr crypto.Address) [20]byte {
	var out [20]byte
	copy(out[:], addr.Bytes())
	return out
}
