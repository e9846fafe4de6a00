package loan

import (
	"math/big"

	"bigbangchain/crypto"
)

// Loan tracks one borrower's position against one collateral asset. A record
// exists in storage only while at least one of the two amounts is non-zero;
// that disjunction is the exists predicate used throughout the engine.
type Loan struct {
	// Borrower and Asset form the storage key.
	Borrower crypto.Address
	Asset    crypto.Address
	// Collateral is the collateral token amount currently locked.
	Collateral *big.Int
	// Borrowed is the outstanding synthetic (BBG) debt.
	Borrowed *big.Int
	// Expiry is the repayment deadline as a unix timestamp.
	Expiry uint64
}

// Exists reports whether the record represents an open position.
func (l *Loan) Exists() bool {
	if l == nil {
		return false
	}
	return (l.Collateral != nil && l.Collateral.Sign() > 0) ||
		(l.Borrowed != nil && l.Borrowed.Sign() > 0)
}

// EnsureDefaults populates nil amount fields on decoded records.
func (l *Loan) EnsureDefaults() {
	if l == nil {
		return
	}
	if l.Collateral == nil {
		l.Collateral = big.NewInt(0)
	}
	if l.Borrowed == nil {
		l.Borrowed = big.NewInt(0)
	}
}

// Aggregates holds the protocol-wide usage counters backing the synthetic
// price estimator. They must stay consistent with the sum over all open loans.
type Aggregates struct {
	// TotalUsers is reserved: the deployed contract declared it without ever
	// incrementing it, and the behaviour is preserved.
	TotalUsers uint64
	// CollateralValue is the total collateral value across open loans, in
	// 18-decimal valuation units.
	CollateralValue *big.Int
	// LentOut is the total synthetic amount currently lent out.
	LentOut *big.Int
}

// EnsureDefaults populates nil counter fields on decoded records.
func (a *Aggregates) EnsureDefaults() {
	if a == nil {
		return
	}
	if a.CollateralValue == nil {
		a.CollateralValue = big.NewInt(0)
	}
	if a.LentOut == nil {
		a.LentOut = big.NewInt(0)
	}
}
