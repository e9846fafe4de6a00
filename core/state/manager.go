package state

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"bigbangchain/core/types"
	"bigbangchain/crypto"
	"bigbangchain/native/loan"
	"bigbangchain/native/registry"
	"bigbangchain/native/voting"
	"bigbangchain/storage"
)

var (
	accountPrefix  = []byte("account/")
	loanPrefix     = []byte("loan/")
	tokenPrefix    = []byte("registry/token/")
	tokenCountKey  = []byte("registry/count")
	aggregatesKey  = []byte("loan/aggregates")
	votingTallyKey = []byte("voting/tally")
	paramPrefix    = []byte("param/")
)

// Manager persists every record the native engines own on a key-value
// database. It satisfies each engine's narrow state interface so the host can
// wire one Manager into all of them.
type Manager struct {
	db storage.Database
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

func (m *Manager) withDB() (storage.Database, error) {
	if m == nil || m.db == nil {
		return nil, fmt.Errorf("state: database not configured")
	}
	return m.db, nil
}

func (m *Manager) putRecord(key []byte, value interface{}) error {
	db, err := m.withDB()
	if err != nil {
		return err
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return db.Put(key, encoded)
}

// getRecord decodes the stored value into out. The boolean reports whether the
// key existed.
func (m *Manager) getRecord(key []byte, out interface{}) (bool, error) {
	db, err := m.withDB()
	if err != nil {
		return false, err
	}
	data, err := db.Get(key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

func accountKey(addr crypto.Address) []byte {
	return append(append([]byte(nil), accountPrefix...), addr.Bytes()...)
}

func loanKey(borrower, asset crypto.Address) []byte {
	key := append(append([]byte(nil), loanPrefix...), asset.Bytes()...)
	key = append(key, '/')
	return append(key, borrower.Bytes()...)
}

func tokenKey(asset crypto.Address) []byte {
	return append(append([]byte(nil), tokenPrefix...), asset.Bytes()...)
}

func paramKey(name string) []byte {
	return append(append([]byte(nil), paramPrefix...), name...)
}

// --- Accounts ---

// GetAccount loads the balances tracked for an address, or nil when the
// address has never been touched.
func (m *Manager) GetAccount(addr crypto.Address) (*types.Account, error) {
	var stored types.Account
	ok, err := m.getRecord(accountKey(addr), &stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	stored.EnsureDefaults()
	return &stored, nil
}

// PutAccount persists the balances for an address.
func (m *Manager) PutAccount(addr crypto.Address, account *types.Account) error {
	if account == nil {
		return fmt.Errorf("state: nil account")
	}
	account.EnsureDefaults()
	return m.putRecord(accountKey(addr), account)
}

// --- Loans ---

type storedLoan struct {
	Borrower   []byte
	Asset      []byte
	Collateral *big.Int
	Borrowed   *big.Int
	Expiry     uint64
}

// GetLoan loads the open position for a (borrower, asset) pair, or nil when
// none is stored.
func (m *Manager) GetLoan(borrower, asset crypto.Address) (*loan.Loan, error) {
	var stored storedLoan
	ok, err := m.getRecord(loanKey(borrower, asset), &stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	record := &loan.Loan{
		Borrower:   crypto.NewAddress(crypto.BBGPrefix, stored.Borrower),
		Asset:      crypto.NewAddress(crypto.BBGPrefix, stored.Asset),
		Collateral: stored.Collateral,
		Borrowed:   stored.Borrowed,
		Expiry:     stored.Expiry,
	}
	record.EnsureDefaults()
	return record, nil
}

// PutLoan persists a loan record under its (borrower, asset) key.
func (m *Manager) PutLoan(record *loan.Loan) error {
	if record == nil {
		return fmt.Errorf("state: nil loan")
	}
	record.EnsureDefaults()
	stored := storedLoan{
		Borrower:   append([]byte(nil), record.Borrower.Bytes()...),
		Asset:      append([]byte(nil), record.Asset.Bytes()...),
		Collateral: record.Collateral,
		Borrowed:   record.Borrowed,
		Expiry:     record.Expiry,
	}
	return m.putRecord(loanKey(record.Borrower, record.Asset), &stored)
}

// DeleteLoan removes a closed position.
func (m *Manager) DeleteLoan(borrower, asset crypto.Address) error {
	db, err := m.withDB()
	if err != nil {
		return err
	}
	return db.Delete(loanKey(borrower, asset))
}

// GetAggregates loads the protocol-wide usage counters, or nil before first
// use.
func (m *Manager) GetAggregates() (*loan.Aggregates, error) {
	var agg loan.Aggregates
	ok, err := m.getRecord(aggregatesKey, &agg)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	agg.EnsureDefaults()
	return &agg, nil
}

// PutAggregates persists the usage counters.
func (m *Manager) PutAggregates(agg *loan.Aggregates) error {
	if agg == nil {
		return fmt.Errorf("state: nil aggregates")
	}
	agg.EnsureDefaults()
	return m.putRecord(aggregatesKey, agg)
}

// --- Token registry ---

type storedToken struct {
	Asset []byte
	Feed  []byte
}

// RegistryGetToken loads a supported-token record, or nil when absent.
func (m *Manager) RegistryGetToken(asset crypto.Address) (*registry.SupportedToken, error) {
	var stored storedToken
	ok, err := m.getRecord(tokenKey(asset), &stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &registry.SupportedToken{
		Asset: crypto.NewAddress(crypto.BBGPrefix, stored.Asset),
		Feed:  crypto.NewAddress(crypto.BBGPrefix, stored.Feed),
	}, nil
}

// RegistryPutToken persists a supported-token record.
func (m *Manager) RegistryPutToken(token *registry.SupportedToken) error {
	if token == nil {
		return fmt.Errorf("state: nil token")
	}
	stored := storedToken{
		Asset: append([]byte(nil), token.Asset.Bytes()...),
		Feed:  append([]byte(nil), token.Feed.Bytes()...),
	}
	return m.putRecord(tokenKey(token.Asset), &stored)
}

// RegistryDeleteToken removes a supported-token record.
func (m *Manager) RegistryDeleteToken(asset crypto.Address) error {
	db, err := m.withDB()
	if err != nil {
		return err
	}
	return db.Delete(tokenKey(asset))
}

// RegistryTokenCount returns the number of explicitly registered tokens.
func (m *Manager) RegistryTokenCount() (uint64, error) {
	var count uint64
	ok, err := m.getRecord(tokenCountKey, &count)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return count, nil
}

// RegistrySetTokenCount persists the registered-token counter.
func (m *Manager) RegistrySetTokenCount(count uint64) error {
	return m.putRecord(tokenCountKey, count)
}

// --- Voting ---

// VotingGetTally loads the vote-weight counters, or nil before the first vote.
func (m *Manager) VotingGetTally() (*voting.Tally, error) {
	var tally voting.Tally
	ok, err := m.getRecord(votingTallyKey, &tally)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	tally.EnsureDefaults()
	return &tally, nil
}

// VotingPutTally persists the vote-weight counters.
func (m *Manager) VotingPutTally(tally *voting.Tally) error {
	if tally == nil {
		return fmt.Errorf("state: nil tally")
	}
	tally.EnsureDefaults()
	return m.putRecord(votingTallyKey, tally)
}

// --- Parameter store ---

// ParamStoreSet persists a raw parameter payload under its canonical name.
func (m *Manager) ParamStoreSet(name string, value []byte) error {
	db, err := m.withDB()
	if err != nil {
		return err
	}
	return db.Put(paramKey(name), value)
}

// ParamStoreGet loads a raw parameter payload. The boolean reports existence.
func (m *Manager) ParamStoreGet(name string) ([]byte, bool, error) {
	db, err := m.withDB()
	if err != nil {
		return nil, false, err
	}
	value, err := db.Get(paramKey(name))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}
