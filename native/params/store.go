package params

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"bigbangchain/crypto"
	"bigbangchain/native/common"
)

// ErrNotConfigured is returned when no parameter set has been persisted yet.
var ErrNotConfigured = errors.New("params: business parameters not configured")

// StoreState captures the subset of state manager capabilities required by the
// parameter store.
type StoreState interface {
	ParamStoreSet(name string, value []byte) error
	ParamStoreGet(name string) ([]byte, bool, error)
}

// Store provides typed, validated access to the governance-controlled business
// parameters.
type Store struct {
	state StoreState
	roles common.RoleView
}

// NewStore constructs a parameter store wrapper using the supplied state
// backend.
func NewStore(state StoreState) *Store {
	return &Store{state: state}
}

// SetRoles wires the role table consulted by gated mutations.
func (s *Store) SetRoles(roles common.RoleView) {
	if s == nil {
		return
	}
	s.roles = roles
}

func (s *Store) withState() (StoreState, error) {
	if s == nil || s.state == nil {
		return nil, fmt.Errorf("params: state not configured")
	}
	return s.state, nil
}

// Parameters loads the persisted parameter snapshot.
func (s *Store) Parameters() (BusinessParameters, error) {
	state, err := s.withState()
	if err != nil {
		return BusinessParameters{}, err
	}
	raw, ok, err := state.ParamStoreGet(ParamsKeyBusiness)
	if err != nil {
		return BusinessParameters{}, err
	}
	if !ok || len(bytes.TrimSpace(raw)) == 0 {
		return BusinessParameters{}, ErrNotConfigured
	}
	var params BusinessParameters
	if err := json.Unmarshal(raw, &params); err != nil {
		return BusinessParameters{}, fmt.Errorf("params: decode business parameters: %w", err)
	}
	params.EnsureDefaults()
	return params, nil
}

// SetParameters validates and atomically replaces the whole parameter set.
// Any bound violation rejects the update and leaves prior values intact. The
// accrued owner share is carried over from the stored record rather than the
// caller-supplied one, so a parameter update can never mint or erase operator
// revenue.
func (s *Store) SetParameters(caller crypto.Address, params BusinessParameters) error {
	if err := common.RequireRole(s.roles, common.RoleAdmin, caller); err != nil {
		return err
	}
	stored, err := s.Parameters()
	switch {
	case err == nil:
		params.OwnerShare = stored.OwnerShare
	case errors.Is(err, ErrNotConfigured):
		if params.OwnerShare == nil {
			params.OwnerShare = big.NewInt(0)
		}
	default:
		return err
	}
	if err := params.Validate(); err != nil {
		return err
	}
	return s.persist(params)
}

// AdjustLendingLimitation nudges the loan-to-value ceiling by one unit. Only
// the authorized adjuster (the governance voter module) may call it. The new
// value is returned for event emission.
func (s *Store) AdjustLendingLimitation(caller crypto.Address, delta int) (uint64, error) {
	if err := common.RequireRole(s.roles, common.RoleAdjuster, caller); err != nil {
		return 0, err
	}
	if delta != 1 && delta != -1 {
		return 0, ErrOutOfRange
	}
	params, err := s.Parameters()
	if err != nil {
		return 0, err
	}
	next := int64(params.LendingLimitationPercent) + int64(delta)
	if next < MinLendingLimitation || next > MaxLendingLimitation {
		return 0, ErrOutOfRange
	}
	params.LendingLimitationPercent = uint64(next)
	if err := s.persist(params); err != nil {
		return 0, err
	}
	return params.LendingLimitationPercent, nil
}

// AdjustRepaymentPeriod nudges the repayment period by one unit. The adjuster
// range is 1-31 days as deployed, independent of the 30-60 corridor enforced
// by SetParameters.
func (s *Store) AdjustRepaymentPeriod(caller crypto.Address, delta int) (uint64, error) {
	if err := common.RequireRole(s.roles, common.RoleAdjuster, caller); err != nil {
		return 0, err
	}
	if delta != 1 && delta != -1 {
		return 0, ErrOutOfRange
	}
	params, err := s.Parameters()
	if err != nil {
		return 0, err
	}
	next := int64(params.RepaymentPeriodDays) + int64(delta)
	if next < MinAdjustableRepaymentPeriod || next > MaxAdjustableRepaymentPeriod {
		return 0, ErrOutOfRange
	}
	params.RepaymentPeriodDays = uint64(next)
	if err := s.persist(params); err != nil {
		return 0, err
	}
	return params.RepaymentPeriodDays, nil
}

// CreditOwnerShare accrues protocol revenue to the operator's withdrawable
// balance. It is an internal module API used by the engines, not a gated
// entry point.
func (s *Store) CreditOwnerShare(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return nil
	}
	params, err := s.Parameters()
	if err != nil {
		return err
	}
	params.OwnerShare = new(big.Int).Add(params.OwnerShare, amount)
	return s.persist(params)
}

// DebitOwnerShare reduces the operator's withdrawable balance. The caller is
// responsible for bounds-checking against the current share.
func (s *Store) DebitOwnerShare(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return nil
	}
	params, err := s.Parameters()
	if err != nil {
		return err
	}
	next := new(big.Int).Sub(params.OwnerShare, amount)
	if next.Sign() < 0 {
		return ErrInvalidParameter
	}
	params.OwnerShare = next
	return s.persist(params)
}

// Bootstrap seeds the parameter record at genesis without a role check. It
// refuses to overwrite an existing record.
func (s *Store) Bootstrap(params BusinessParameters) error {
	if _, err := s.Parameters(); err == nil {
		return fmt.Errorf("params: business parameters already bootstrapped")
	} else if !errors.Is(err, ErrNotConfigured) {
		return err
	}
	if params.OwnerShare == nil {
		params.OwnerShare = big.NewInt(0)
	}
	if err := params.Validate(); err != nil {
		return err
	}
	return s.persist(params)
}

func (s *Store) persist(params BusinessParameters) error {
	state, err := s.withState()
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("params: encode business parameters: %w", err)
	}
	return state.ParamStoreSet(ParamsKeyBusiness, encoded)
}
