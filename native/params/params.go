package params

import (
	"errors"
	"math/big"

	"bigbangchain/crypto"
)

var (
	// ErrInvalidParameter is returned when a parameter set violates any
	// configured bound. The rejected update leaves prior values intact.
	ErrInvalidParameter = errors.New("params: invalid parameter")
	// ErrOutOfRange is returned by the one-unit adjusters when the nudged
	// value would leave the adjustable range.
	ErrOutOfRange = errors.New("params: adjustment out of range")
)

// Configured bounds enforced by SetParameters.
const (
	MinOwnerFeePercent       = 1
	MaxOwnerFeePercent       = 100
	MinLendingLimitation     = 1
	MaxLendingLimitation     = 100
	MinRepaymentPeriodDays   = 30
	MaxRepaymentPeriodDays   = 60
	// The one-unit adjuster checks its own range, which does not match the
	// configured 30-60 corridor above. The mismatch is carried over from the
	// deployed contract logic; see DESIGN.md.
	MinAdjustableRepaymentPeriod = 1
	MaxAdjustableRepaymentPeriod = 31
)

// BusinessParameters is the singleton business-logic configuration for the
// lending engine. All monetary values are in the asset's smallest unit.
type BusinessParameters struct {
	// BaseFeed is the price-feed reference used for the base network asset,
	// and therefore for pricing the synthetic asset's collateral unit.
	BaseFeed crypto.Address `json:"baseFeed"`
	// OwnerFeePercent is the operator's cut of collected protocol fees.
	OwnerFeePercent uint64 `json:"ownerFeePercent"`
	// VoteFee is the per-weight-unit charge for governance votes,
	// denominated in the native settlement asset.
	VoteFee *big.Int `json:"voteFee"`
	// LendingLimitationPercent is the loan-to-value ceiling.
	LendingLimitationPercent uint64 `json:"lendingLimitationPercent"`
	// LowestPrice and HighestPrice bound the derived synthetic asset price.
	LowestPrice  *big.Int `json:"lowestPrice"`
	HighestPrice *big.Int `json:"highestPrice"`
	// RepaymentPeriodDays sets the loan expiration window.
	RepaymentPeriodDays uint64 `json:"repaymentPeriodDays"`
	// OwnerShare is the accrued-but-unwithdrawn balance owed to the
	// protocol operator.
	OwnerShare *big.Int `json:"ownerShare"`
}

// Validate checks every configured bound. It reports the first violation.
func (p BusinessParameters) Validate() error {
	if p.BaseFeed.IsZero() {
		return ErrInvalidParameter
	}
	if p.OwnerFeePercent < MinOwnerFeePercent || p.OwnerFeePercent > MaxOwnerFeePercent {
		return ErrInvalidParameter
	}
	if p.VoteFee == nil || p.VoteFee.Sign() <= 0 {
		return ErrInvalidParameter
	}
	if p.LendingLimitationPercent < MinLendingLimitation || p.LendingLimitationPercent > MaxLendingLimitation {
		return ErrInvalidParameter
	}
	if p.LowestPrice == nil || p.LowestPrice.Sign() <= 0 {
		return ErrInvalidParameter
	}
	if p.HighestPrice == nil || p.HighestPrice.Sign() <= 0 {
		return ErrInvalidParameter
	}
	if p.LowestPrice.Cmp(p.HighestPrice) >= 0 {
		return ErrInvalidParameter
	}
	if p.RepaymentPeriodDays < MinRepaymentPeriodDays || p.RepaymentPeriodDays > MaxRepaymentPeriodDays {
		return ErrInvalidParameter
	}
	if p.OwnerShare != nil && p.OwnerShare.Sign() < 0 {
		return ErrInvalidParameter
	}
	return nil
}

// EnsureDefaults populates nil big.Int fields so decoded snapshots are safe to
// use arithmetically.
func (p *BusinessParameters) EnsureDefaults() {
	if p == nil {
		return
	}
	if p.VoteFee == nil {
		p.VoteFee = big.NewInt(0)
	}
	if p.LowestPrice == nil {
		p.LowestPrice = big.NewInt(0)
	}
	if p.HighestPrice == nil {
		p.HighestPrice = big.NewInt(0)
	}
	if p.OwnerShare == nil {
		p.OwnerShare = big.NewInt(0)
	}
}

// Clone returns a deep copy of the parameter set.
func (p BusinessParameters) Clone() BusinessParameters {
	clone := p
	if p.VoteFee != nil {
		clone.VoteFee = new(big.Int).Set(p.VoteFee)
	}
	if p.LowestPrice != nil {
		clone.LowestPrice = new(big.Int).Set(p.LowestPrice)
	}
	if p.HighestPrice != nil {
		clone.HighestPrice = new(big.Int).Set(p.HighestPrice)
	}
	if p.OwnerShare != nil {
		clone.OwnerShare = new(big.Int).Set(p.OwnerShare)
	}
	return clone
}
