package types

import "math/big"

// Account holds the ledger balances tracked for a single address. BalanceBBG
// is the protocol-native synthetic asset; BalanceNative is the host network's
// settlement coin, which is also the engine's valuation unit.
type Account struct {
	Nonce         uint64   `json:"nonce"`
	BalanceBBG    *big.Int `json:"balanceBBG"`
	BalanceNative *big.Int `json:"balanceNative"`
}

// EnsureDefaults populates nil balance fields so codec round trips and
// arithmetic on freshly decoded accounts are safe.
func (a *Account) EnsureDefaults() {
	if a == nil {
		return
	}
	if a.BalanceBBG == nil {
		a.BalanceBBG = big.NewInt(0)
	}
	if a.BalanceNative == nil {
		a.BalanceNative = big.NewInt(0)
	}
}
