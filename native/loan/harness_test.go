package loan

import (
	"bytes"
	"errors"
	"math/big"
	"testing"
	"time"

	"bigbangchain/core/types"
	"bigbangchain/crypto"
	"bigbangchain/native/common"
	"bigbangchain/native/params"
	"bigbangchain/native/registry"
)

// mockState backs the engine, the parameter store, and the registry in one
// in-memory record set, mirroring how the real state manager serves all three.
type mockState struct {
	loans    map[string]*Loan
	accounts map[string]*types.Account
	agg      *Aggregates
	tokens   map[string]*registry.SupportedToken
	count    uint64
	params   map[string][]byte
}

func newMockState() *mockState {
	return &mockState{
		loans:    make(map[string]*Loan),
		accounts: make(map[string]*types.Account),
		tokens:   make(map[string]*registry.SupportedToken),
		params:   make(map[string][]byte),
	}
}

func loanKey(borrower, asset crypto.Address) string {
	return string(asset.Bytes()) + "/" + string(borrower.Bytes())
}

func cloneLoan(l *Loan) *Loan {
	clone := &Loan{Borrower: l.Borrower, Asset: l.Asset, Expiry: l.Expiry}
	if l.Collateral != nil {
		clone.Collateral = new(big.Int).Set(l.Collateral)
	}
	if l.Borrowed != nil {
		clone.Borrowed = new(big.Int).Set(l.Borrowed)
	}
	return clone
}

func cloneAccount(acc *types.Account) *types.Account {
	clone := &types.Account{Nonce: acc.Nonce}
	if acc.BalanceBBG != nil {
		clone.BalanceBBG = new(big.Int).Set(acc.BalanceBBG)
	}
	if acc.BalanceNative != nil {
		clone.BalanceNative = new(big.Int).Set(acc.BalanceNative)
	}
	clone.EnsureDefaults()
	return clone
}

func (m *mockState) GetLoan(borrower, asset crypto.Address) (*Loan, error) {
	record, ok := m.loans[loanKey(borrower, asset)]
	if !ok {
		return nil, nil
	}
	return cloneLoan(record), nil
}

func (m *mockState) PutLoan(record *Loan) error {
	m.loans[loanKey(record.Borrower, record.Asset)] = cloneLoan(record)
	return nil
}

func (m *mockState) DeleteLoan(borrower, asset crypto.Address) error {
	delete(m.loans, loanKey(borrower, asset))
	return nil
}

func (m *mockState) GetAggregates() (*Aggregates, error) {
	if m.agg == nil {
		return nil, nil
	}
	clone := &Aggregates{TotalUsers: m.agg.TotalUsers}
	if m.agg.CollateralValue != nil {
		clone.CollateralValue = new(big.Int).Set(m.agg.CollateralValue)
	}
	if m.agg.LentOut != nil {
		clone.LentOut = new(big.Int).Set(m.agg.LentOut)
	}
	return clone, nil
}

func (m *mockState) PutAggregates(agg *Aggregates) error {
	clone := &Aggregates{TotalUsers: agg.TotalUsers}
	if agg.CollateralValue != nil {
		clone.CollateralValue = new(big.Int).Set(agg.CollateralValue)
	}
	if agg.LentOut != nil {
		clone.LentOut = new(big.Int).Set(agg.LentOut)
	}
	m.agg = clone
	return nil
}

func (m *mockState) GetAccount(addr crypto.Address) (*types.Account, error) {
	acc, ok := m.accounts[string(addr.Bytes())]
	if !ok {
		return nil, nil
	}
	return cloneAccount(acc), nil
}

func (m *mockState) PutAccount(addr crypto.Address, acc *types.Account) error {
	m.accounts[string(addr.Bytes())] = cloneAccount(acc)
	return nil
}

func (m *mockState) RegistryGetToken(asset crypto.Address) (*registry.SupportedToken, error) {
	token, ok := m.tokens[string(asset.Bytes())]
	if !ok {
		return nil, nil
	}
	clone := *token
	return &clone, nil
}

func (m *mockState) RegistryPutToken(token *registry.SupportedToken) error {
	clone := *token
	m.tokens[string(token.Asset.Bytes())] = &clone
	return nil
}

func (m *mockState) RegistryDeleteToken(asset crypto.Address) error {
	delete(m.tokens, string(asset.Bytes()))
	return nil
}

func (m *mockState) RegistryTokenCount() (uint64, error) { return m.count, nil }

func (m *mockState) RegistrySetTokenCount(count uint64) error {
	m.count = count
	return nil
}

func (m *mockState) ParamStoreSet(name string, value []byte) error {
	m.params[name] = append([]byte(nil), value...)
	return nil
}

func (m *mockState) ParamStoreGet(name string) ([]byte, bool, error) {
	value, ok := m.params[name]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

// stubFeed answers from a fixed feed-address to price table.
type stubFeed struct {
	answers map[string]*big.Int
	now     time.Time
}

func newStubFeed(now time.Time) *stubFeed {
	return &stubFeed{answers: make(map[string]*big.Int), now: now}
}

func (f *stubFeed) set(feed crypto.Address, answer *big.Int) {
	f.answers[string(feed.Bytes())] = new(big.Int).Set(answer)
}

func (f *stubFeed) LatestPrice(feed crypto.Address) (PriceSample, error) {
	answer, ok := f.answers[string(feed.Bytes())]
	if !ok {
		return PriceSample{}, errors.New("stub feed: unknown feed")
	}
	return PriceSample{Answer: new(big.Int).Set(answer), Timestamp: f.now}, nil
}

// stubTokens tracks external token balances keyed by (token, holder), with the
// custody address supplied so Transfer has a sender.
type stubTokens struct {
	custody  crypto.Address
	balances map[string]*big.Int
}

func newStubTokens(custody crypto.Address) *stubTokens {
	return &stubTokens{custody: custody, balances: make(map[string]*big.Int)}
}

func tokenKey(token, holder crypto.Address) string {
	return string(token.Bytes()) + "/" + string(holder.Bytes())
}

func (s *stubTokens) set(token, holder crypto.Address, amount *big.Int) {
	s.balances[tokenKey(token, holder)] = new(big.Int).Set(amount)
}

func (s *stubTokens) BalanceOf(token, holder crypto.Address) (*big.Int, error) {
	balance, ok := s.balances[tokenKey(token, holder)]
	if !ok {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(balance), nil
}

func (s *stubTokens) move(token, from, to crypto.Address, amount *big.Int) error {
	source, _ := s.BalanceOf(token, from)
	if source.Cmp(amount) < 0 {
		return errors.New("stub tokens: insufficient balance")
	}
	dest, _ := s.BalanceOf(token, to)
	s.balances[tokenKey(token, from)] = source.Sub(source, amount)
	s.balances[tokenKey(token, to)] = dest.Add(dest, amount)
	return nil
}

func (s *stubTokens) Transfer(token, to crypto.Address, amount *big.Int) error {
	return s.move(token, s.custody, to, amount)
}

func (s *stubTokens) TransferFrom(token, from, to crypto.Address, amount *big.Int) error {
	return s.move(token, from, to, amount)
}

type stubPauses struct {
	paused map[string]bool
}

func (p *stubPauses) IsPaused(module string) bool { return p.paused[module] }

func makeAddress(fill byte) crypto.Address {
	return crypto.MustNewAddress(crypto.BBGPrefix, bytes.Repeat([]byte{fill}, 20))
}

// scaled returns base times ten to the pow.
func scaled(base int64, pow uint) *big.Int {
	v := big.NewInt(base)
	return v.Mul(v, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(pow)), nil))
}

var (
	moduleAddr    = makeAddress(0xCC)
	syntheticAddr = makeAddress(0x51)
	nativeAddr    = makeAddress(0x52)
	borrowerAddr  = makeAddress(0xB0)
	tokenAsset    = makeAddress(0x01)
	tokenFeed     = makeAddress(0x11)
	baseFeedAddr  = makeAddress(0xFE)
	adminAddr     = makeAddress(0xAD)
	ownerAddr     = makeAddress(0x0E)
)

var testNow = time.Unix(1_700_000_000, 0).UTC()

type harness struct {
	engine *Engine
	state  *mockState
	store  *params.Store
	reg    *registry.Registry
	feed   *stubFeed
	tokens *stubTokens
	pauses *stubPauses
	roles  *common.Roles
}

func testParams() params.BusinessParameters {
	return params.BusinessParameters{
		BaseFeed:                 baseFeedAddr,
		OwnerFeePercent:          10,
		VoteFee:                  scaled(1, 18),
		LendingLimitationPercent: 50,
		LowestPrice:              scaled(1, 16),
		HighestPrice:             scaled(1, 18),
		RepaymentPeriodDays:      30,
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	state := newMockState()
	store := params.NewStore(state)
	roles := common.NewRoles()
	roles.Grant(common.RoleAdmin, adminAddr)
	roles.Grant(common.RoleOwner, ownerAddr)
	store.SetRoles(roles)
	if err := store.Bootstrap(testParams()); err != nil {
		t.Fatalf("bootstrap parameters: %v", err)
	}

	reg := registry.NewRegistry(syntheticAddr, nativeAddr)
	reg.SetState(state)
	reg.SetRoles(roles)
	if err := reg.AddToken(adminAddr, tokenAsset, tokenFeed); err != nil {
		t.Fatalf("register token: %v", err)
	}

	feed := newStubFeed(testNow)
	// 2500 dollars at the feed's 8-decimal precision for the external token,
	// one dollar for the base network asset.
	feed.set(tokenFeed, scaled(2500, 8))
	feed.set(baseFeedAddr, scaled(1, 8))

	tokens := newStubTokens(moduleAddr)
	pauses := &stubPauses{paused: make(map[string]bool)}

	engine := NewEngine(moduleAddr, syntheticAddr, nativeAddr, store, reg)
	engine.SetState(state)
	engine.SetPriceFeed(feed)
	engine.SetTokenBackend(tokens)
	engine.SetRoles(roles)
	engine.SetPauses(pauses)
	engine.SetNowFunc(func() time.Time { return testNow })

	return &harness{
		engine: engine,
		state:  state,
		store:  store,
		reg:    reg,
		feed:   feed,
		tokens: tokens,
		pauses: pauses,
		roles:  roles,
	}
}

// fundBBG credits synthetic balance directly on the ledger.
func (h *harness) fundBBG(t *testing.T, addr crypto.Address, amount *big.Int) {
	t.Helper()
	acc, err := h.state.GetAccount(addr)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if acc == nil {
		acc = &types.Account{}
	}
	acc.EnsureDefaults()
	acc.BalanceBBG = new(big.Int).Add(acc.BalanceBBG, amount)
	if err := h.state.PutAccount(addr, acc); err != nil {
		t.Fatalf("put account: %v", err)
	}
}

func (h *harness) fundNative(t *testing.T, addr crypto.Address, amount *big.Int) {
	t.Helper()
	acc, err := h.state.GetAccount(addr)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if acc == nil {
		acc = &types.Account{}
	}
	acc.EnsureDefaults()
	acc.BalanceNative = new(big.Int).Add(acc.BalanceNative, amount)
	if err := h.state.PutAccount(addr, acc); err != nil {
		t.Fatalf("put account: %v", err)
	}
}

func (h *harness) balanceBBG(t *testing.T, addr crypto.Address) *big.Int {
	t.Helper()
	acc, err := h.state.GetAccount(addr)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if acc == nil {
		return big.NewInt(0)
	}
	acc.EnsureDefaults()
	return acc.BalanceBBG
}

func (h *harness) balanceNative(t *testing.T, addr crypto.Address) *big.Int {
	t.Helper()
	acc, err := h.state.GetAccount(addr)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if acc == nil {
		return big.NewInt(0)
	}
	acc.EnsureDefaults()
	return acc.BalanceNative
}
