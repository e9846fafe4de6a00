package loan

import (
	"math/big"
	"time"

	"bigbangchain/crypto"
)

// PriceSample carries the latest answer reported by a price feed. Answer is a
// signed integer in the feed's own precision; the engine only consumes the
// value after scaling it to its internal unit.
type PriceSample struct {
	Answer    *big.Int
	Timestamp time.Time
}

// PriceFeed resolves the latest sample for a feed reference. Implementations
// wrap the host's oracle service; the engine treats them as read-only.
type PriceFeed interface {
	LatestPrice(feed crypto.Address) (PriceSample, error)
}

// TokenBackend is the transfer capability of external collateral token
// contracts. The synthetic and native settlement assets do not route through
// it; their balances live on the engine's account ledger.
type TokenBackend interface {
	BalanceOf(token, holder crypto.Address) (*big.Int, error)
	Transfer(token, to crypto.Address, amount *big.Int) error
	TransferFrom(token, from, to crypto.Address, amount *big.Int) error
}
