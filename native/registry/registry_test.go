package registry

import (
	"bytes"
	"errors"
	"testing"

	"bigbangchain/core/events"
	"bigbangchain/crypto"
	"bigbangchain/native/common"
)

type mockState struct {
	tokens map[string]*SupportedToken
	count  uint64
}

func newMockState() *mockState {
	return &mockState{tokens: make(map[string]*SupportedToken)}
}

func (m *mockState) RegistryGetToken(asset crypto.Address) (*SupportedToken, error) {
	token, ok := m.tokens[string(asset.Bytes())]
	if !ok {
		return nil, nil
	}
	clone := *token
	return &clone, nil
}

func (m *mockState) RegistryPutToken(token *SupportedToken) error {
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

type captureEmitter struct {
	events []events.Event
}

func (c *captureEmitter) Emit(event events.Event) { c.events = append(c.events, event) }

func makeAddress(fill byte) crypto.Address {
	return crypto.MustNewAddress(crypto.BBGPrefix, bytes.Repeat([]byte{fill}, 20))
}

var (
	syntheticAddr = makeAddress(0x51)
	nativeAddr    = makeAddress(0x52)
)

func newTestRegistry(t *testing.T) (*Registry, *mockState, crypto.Address, *captureEmitter) {
	t.Helper()
	state := newMockState()
	reg := NewRegistry(syntheticAddr, nativeAddr)
	reg.SetState(state)
	roles := common.NewRoles()
	admin := makeAddress(0xAD)
	roles.Grant(common.RoleAdmin, admin)
	reg.SetRoles(roles)
	emitter := &captureEmitter{}
	reg.SetEmitter(emitter)
	return reg, state, admin, emitter
}

func TestAddTokenRegistersAndCounts(t *testing.T) {
	reg, _, admin, emitter := newTestRegistry(t)
	asset := makeAddress(0x01)
	feed := makeAddress(0x02)

	if err := reg.AddToken(admin, asset, feed); err != nil {
		t.Fatalf("add token: %v", err)
	}
	supported, err := reg.IsSupported(asset)
	if err != nil {
		t.Fatalf("is supported: %v", err)
	}
	if !supported {
		t.Fatal("asset should be supported after add")
	}
	got, err := reg.PriceFeed(asset)
	if err != nil {
		t.Fatalf("price feed: %v", err)
	}
	if !got.Equal(feed) {
		t.Fatalf("feed mismatch: got %s want %s", got, feed)
	}
	count, err := reg.TokenCount()
	if err != nil {
		t.Fatalf("token count: %v", err)
	}
	if count != 1 {
		t.Fatalf("token count: got %d want 1", count)
	}
	if len(emitter.events) != 1 {
		t.Fatalf("expected one event, got %d", len(emitter.events))
	}
	if _, ok := emitter.events[0].(events.TokenAdded); !ok {
		t.Fatalf("expected TokenAdded event, got %T", emitter.events[0])
	}
}

func TestAddTokenRejectsDuplicate(t *testing.T) {
	reg, _, admin, _ := newTestRegistry(t)
	asset := makeAddress(0x01)
	feed := makeAddress(0x02)
	if err := reg.AddToken(admin, asset, feed); err != nil {
		t.Fatalf("add token: %v", err)
	}
	if err := reg.AddToken(admin, asset, makeAddress(0x03)); !errors.Is(err, ErrAlreadySupported) {
		t.Fatalf("expected ErrAlreadySupported, got %v", err)
	}
	count, err := reg.TokenCount()
	if err != nil {
		t.Fatalf("token count: %v", err)
	}
	if count != 1 {
		t.Fatalf("duplicate add changed count: got %d want 1", count)
	}
}

func TestAddTokenRejectsImplicitAssets(t *testing.T) {
	reg, _, admin, _ := newTestRegistry(t)
	feed := makeAddress(0x02)
	if err := reg.AddToken(admin, syntheticAddr, feed); !errors.Is(err, ErrAlreadySupported) {
		t.Fatalf("synthetic: expected ErrAlreadySupported, got %v", err)
	}
	if err := reg.AddToken(admin, nativeAddr, feed); !errors.Is(err, ErrAlreadySupported) {
		t.Fatalf("native: expected ErrAlreadySupported, got %v", err)
	}
}

func TestAddTokenRejectsZeroAddresses(t *testing.T) {
	reg, _, admin, _ := newTestRegistry(t)
	if err := reg.AddToken(admin, crypto.Address{}, makeAddress(0x02)); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("zero asset: expected ErrInvalidAddress, got %v", err)
	}
	if err := reg.AddToken(admin, makeAddress(0x01), crypto.Address{}); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("zero feed: expected ErrInvalidAddress, got %v", err)
	}
}

func TestAddTokenRequiresAdmin(t *testing.T) {
	reg, _, _, _ := newTestRegistry(t)
	outsider := makeAddress(0x09)
	err := reg.AddToken(outsider, makeAddress(0x01), makeAddress(0x02))
	if !errors.Is(err, common.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRemoveToken(t *testing.T) {
	reg, _, admin, emitter := newTestRegistry(t)
	asset := makeAddress(0x01)
	if err := reg.AddToken(admin, asset, makeAddress(0x02)); err != nil {
		t.Fatalf("add token: %v", err)
	}
	if err := reg.RemoveToken(admin, asset); err != nil {
		t.Fatalf("remove token: %v", err)
	}
	supported, err := reg.IsSupported(asset)
	if err != nil {
		t.Fatalf("is supported: %v", err)
	}
	if supported {
		t.Fatal("asset should not be supported after remove")
	}
	count, err := reg.TokenCount()
	if err != nil {
		t.Fatalf("token count: %v", err)
	}
	if count != 0 {
		t.Fatalf("token count after remove: got %d want 0", count)
	}
	if err := reg.RemoveToken(admin, asset); !errors.Is(err, ErrNotSupported) {
		t.Fatalf("second remove: expected ErrNotSupported, got %v", err)
	}
	if err := reg.RemoveToken(admin, syntheticAddr); !errors.Is(err, ErrNotSupported) {
		t.Fatalf("implicit remove: expected ErrNotSupported, got %v", err)
	}
	last := emitter.events[len(emitter.events)-1]
	if _, ok := last.(events.TokenRemoved); !ok {
		t.Fatalf("expected TokenRemoved event, got %T", last)
	}
}

func TestChangeTokenPriceFeed(t *testing.T) {
	reg, _, admin, emitter := newTestRegistry(t)
	asset := makeAddress(0x01)
	oldFeed := makeAddress(0x02)
	newFeed := makeAddress(0x03)
	if err := reg.AddToken(admin, asset, oldFeed); err != nil {
		t.Fatalf("add token: %v", err)
	}
	if err := reg.ChangeTokenPriceFeed(admin, asset, newFeed); err != nil {
		t.Fatalf("change feed: %v", err)
	}
	got, err := reg.PriceFeed(asset)
	if err != nil {
		t.Fatalf("price feed: %v", err)
	}
	if !got.Equal(newFeed) {
		t.Fatalf("feed mismatch: got %s want %s", got, newFeed)
	}
	if err := reg.ChangeTokenPriceFeed(admin, makeAddress(0x07), newFeed); !errors.Is(err, ErrNotSupported) {
		t.Fatalf("unknown asset: expected ErrNotSupported, got %v", err)
	}
	if err := reg.ChangeTokenPriceFeed(admin, syntheticAddr, newFeed); !errors.Is(err, ErrNotSupported) {
		t.Fatalf("implicit asset: expected ErrNotSupported, got %v", err)
	}
	last := emitter.events[len(emitter.events)-1]
	changed, ok := last.(events.TokenFeedChanged)
	if !ok {
		t.Fatalf("expected TokenFeedChanged event, got %T", last)
	}
	if !bytes.Equal(changed.NewFeed[:], newFeed.Bytes()) {
		t.Fatal("event carries wrong new feed")
	}
}

func TestImplicitAssetsAlwaysSupported(t *testing.T) {
	reg, _, _, _ := newTestRegistry(t)
	for _, asset := range []crypto.Address{syntheticAddr, nativeAddr} {
		supported, err := reg.IsSupported(asset)
		if err != nil {
			t.Fatalf("is supported: %v", err)
		}
		if !supported {
			t.Fatalf("implicit asset %s should be supported", asset)
		}
	}
	supported, err := reg.IsSupported(crypto.Address{})
	if err != nil {
		t.Fatalf("is supported zero: %v", err)
	}
	if supported {
		t.Fatal("zero address must not be supported")
	}
}
