package events

import "math/big"

const (
	// TypeVoteCast is emitted when a weighted governance vote is recorded.
	TypeVoteCast = "governance.vote"
	// TypeParameterAdjusted is emitted when a vote tips the majority and a
	// protocol parameter moves by one unit.
	TypeParameterAdjusted = "governance.parameter.adjusted"
)

// VoteCast captures a recorded ballot and the fee charged for it.
type VoteCast struct {
	Voter     [20]byte
	Parameter string
	Direction string
	Weight    *big.Int
	Fee       *big.Int
}

func (VoteCast) EventType() string { return TypeVoteCast }

// ParameterAdjusted captures a one-unit parameter nudge applied by the voter.
type ParameterAdjusted struct {
	Parameter string
	Direction string
	NewValue  uint64
}

func (ParameterAdjusted) EventType() string { return TypeParameterAdjusted }
