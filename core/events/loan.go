package events

import "math/big"

const (
	// TypeLoanBorrowed is emitted when a borrow opens or overwrites a loan.
	TypeLoanBorrowed = "loan.borrowed"
	// TypeLoanRepaid is emitted on every partial or full repayment.
	TypeLoanRepaid = "loan.repaid"
	// TypeLoanDustWithdrawn is emitted when residual sub-unit collateral is
	// reclaimed outside the repay flow.
	TypeLoanDustWithdrawn = "loan.dust.withdrawn"
	// TypeOwnerShareWithdrawn is emitted when the operator withdraws accrued
	// protocol revenue.
	TypeOwnerShareWithdrawn = "loan.ownershare.withdrawn"
)

// LoanBorrowed captures a newly opened (or overwritten) loan position.
type LoanBorrowed struct {
	Borrower   [20]byte
	Asset      [20]byte
	Collateral *big.Int
	Borrowed   *big.Int
	Expiry     uint64
}

func (LoanBorrowed) EventType() string { return TypeLoanBorrowed }

// LoanRepaid captures a repayment and the collateral released by it.
type LoanRepaid struct {
	Borrower  [20]byte
	Asset     [20]byte
	Repaid    *big.Int
	Released  *big.Int
	Remaining *big.Int
	Closed    bool
}

func (LoanRepaid) EventType() string { return TypeLoanRepaid }

// LoanDustWithdrawn captures a dust reclaim on a debt-free position.
type LoanDustWithdrawn struct {
	Borrower [20]byte
	Asset    [20]byte
	Amount   *big.Int
}

func (LoanDustWithdrawn) EventType() string { return TypeLoanDustWithdrawn }

// OwnerShareWithdrawn captures an operator revenue withdrawal.
type OwnerShareWithdrawn struct {
	Recipient [20]byte
	Amount    *big.Int
	Remaining *big.Int
}

func (OwnerShareWithdrawn) EventType() string { return TypeOwnerShareWithdrawn }
