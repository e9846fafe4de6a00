package loan

import (
	"math/big"

	"github.com/holiman/uint256"
)

var (
	oneHundred = big.NewInt(100)
	// oneToken is one whole collateral unit at the engine's 18-decimal
	// precision; the dust-withdrawal window sits strictly below it.
	oneToken = mustBigInt("1000000000000000000")
	// defaultSyntheticPrice is 0.1 in 18-decimal units, applied while no
	// synthetic supply is lent out.
	defaultSyntheticPrice = mustBigInt("100000000000000000")
	// feedScale normalizes 8-decimal oracle answers to the engine's
	// 18-decimal unit.
	feedScale = mustBigInt("10000000000")
)

func mustBigInt(value string) *big.Int {
	v, ok := new(big.Int).SetString(value, 10)
	if !ok {
		panic("invalid big integer constant")
	}
	return v
}

// checkedMul multiplies two non-negative integers under the 256-bit bound the
// deployed contract operated in. Any operand or product outside uint256 aborts
// the call with ErrArithmeticOverflow.
func checkedMul(a, b *big.Int) (*big.Int, error) {
	if a == nil || b == nil || a.Sign() < 0 || b.Sign() < 0 {
		return nil, ErrArithmeticOverflow
	}
	x, overflow := uint256.FromBig(a)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	y, overflow := uint256.FromBig(b)
	if overflow {
		return nil, ErrArithmeticOverflow
	}
	var z uint256.Int
	if _, over := z.MulOverflow(x, y); over {
		return nil, ErrArithmeticOverflow
	}
	return z.ToBig(), nil
}

// flooredDiv performs the engine's integer division. Callers must tolerate
// truncation; a zero denominator yields zero rather than a panic.
func flooredDiv(a, b *big.Int) *big.Int {
	if a == nil || b == nil || b.Sign() == 0 {
		return big.NewInt(0)
	}
	return new(big.Int).Quo(a, b)
}

// clampPrice bounds a derived price to the configured corridor.
func clampPrice(price, lowest, highest *big.Int) *big.Int {
	if price == nil {
		return new(big.Int).Set(lowest)
	}
	if lowest != nil && price.Cmp(lowest) < 0 {
		return new(big.Int).Set(lowest)
	}
	if highest != nil && price.Cmp(highest) > 0 {
		return new(big.Int).Set(highest)
	}
	return new(big.Int).Set(price)
}
