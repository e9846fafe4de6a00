package registry

import (
	"errors"

	"bigbangchain/core/events"
	"bigbangchain/crypto"
	"bigbangchain/native/common"
)

var (
	// ErrInvalidAddress is returned when a zero address is supplied where a
	// real asset or feed reference is required.
	ErrInvalidAddress = errors.New("registry: invalid address")
	// ErrAlreadySupported is returned when registering a duplicate asset or
	// one of the two implicit assets.
	ErrAlreadySupported = errors.New("registry: token already supported")
	// ErrNotSupported is returned when mutating an unregistered asset or an
	// implicit one.
	ErrNotSupported = errors.New("registry: token not supported")

	errStateNotConfigured = errors.New("registry: state not configured")
)

// SupportedToken pairs a collateral asset with its price-feed reference. A
// record exists with both references non-zero or not at all.
type SupportedToken struct {
	Asset crypto.Address
	Feed  crypto.Address
}

type registryState interface {
	RegistryGetToken(asset crypto.Address) (*SupportedToken, error)
	RegistryPutToken(token *SupportedToken) error
	RegistryDeleteToken(asset crypto.Address) error
	RegistryTokenCount() (uint64, error)
	RegistrySetTokenCount(count uint64) error
}

// Registry tracks which collateral assets the loan engine accepts. The
// protocol's synthetic asset and the native settlement asset are implicitly
// supported and can never be added or removed.
type Registry struct {
	state     registryState
	roles     common.RoleView
	emitter   events.Emitter
	synthetic crypto.Address
	native    crypto.Address
}

// NewRegistry constructs a registry aware of the two implicit asset addresses.
func NewRegistry(synthetic, native crypto.Address) *Registry {
	return &Registry{
		emitter:   events.NoopEmitter{},
		synthetic: synthetic,
		native:    native,
	}
}

// SetState wires the registry to the external persistence layer.
func (r *Registry) SetState(state registryState) { r.state = state }

// SetRoles wires the role table consulted by gated mutations.
func (r *Registry) SetRoles(roles common.RoleView) {
	if r == nil {
		return
	}
	r.roles = roles
}

// SetEmitter configures the event emitter. Nil resets to a no-op sink.
func (r *Registry) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		r.emitter = events.NoopEmitter{}
		return
	}
	r.emitter = emitter
}

func (r *Registry) emit(event events.Event) {
	if r == nil || r.emitter == nil {
		return
	}
	r.emitter.Emit(event)
}

func (r *Registry) isImplicit(asset crypto.Address) bool {
	return asset.Equal(r.synthetic) || asset.Equal(r.native)
}

// AddToken registers a collateral asset with its price feed and increments the
// supported-token counter.
func (r *Registry) AddToken(caller, asset, feed crypto.Address) error {
	if r == nil || r.state == nil {
		return errStateNotConfigured
	}
	if err := common.RequireRole(r.roles, common.RoleAdmin, caller); err != nil {
		return err
	}
	if asset.IsZero() || feed.IsZero() {
		return ErrInvalidAddress
	}
	if r.isImplicit(asset) {
		return ErrAlreadySupported
	}
	existing, err := r.state.RegistryGetToken(asset)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrAlreadySupported
	}
	count, err := r.state.RegistryTokenCount()
	if err != nil {
		return err
	}
	if err := r.state.RegistryPutToken(&SupportedToken{Asset: asset, Feed: feed}); err != nil {
		return err
	}
	count++
	if err := r.state.RegistrySetTokenCount(count); err != nil {
		return err
	}

	var assetBytes, feedBytes [20]byte
	copy(assetBytes[:], asset.Bytes())
	copy(feedBytes[:], feed.Bytes())
	r.emit(events.TokenAdded{Asset: assetBytes, Feed: feedBytes, Total: count})
	return nil
}

// RemoveToken deregisters a collateral asset and decrements the counter.
func (r *Registry) RemoveToken(caller, asset crypto.Address) error {
	if r == nil || r.state == nil {
		return errStateNotConfigured
	}
	if err := common.RequireRole(r.roles, common.RoleAdmin, caller); err != nil {
		return err
	}
	if asset.IsZero() || r.isImplicit(asset) {
		return ErrNotSupported
	}
	existing, err := r.state.RegistryGetToken(asset)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotSupported
	}
	count, err := r.state.RegistryTokenCount()
	if err != nil {
		return err
	}
	if err := r.state.RegistryDeleteToken(asset); err != nil {
		return err
	}
	if count > 0 {
		count--
	}
	if err := r.state.RegistrySetTokenCount(count); err != nil {
		return err
	}

	var assetBytes [20]byte
	copy(assetBytes[:], asset.Bytes())
	r.emit(events.TokenRemoved{Asset: assetBytes, Total: count})
	return nil
}

// ChangeTokenPriceFeed replaces only the feed reference of a registered asset.
func (r *Registry) ChangeTokenPriceFeed(caller, asset, feed crypto.Address) error {
	if r == nil || r.state == nil {
		return errStateNotConfigured
	}
	if err := common.RequireRole(r.roles, common.RoleAdmin, caller); err != nil {
		return err
	}
	if asset.IsZero() || feed.IsZero() {
		return ErrInvalidAddress
	}
	if r.isImplicit(asset) {
		return ErrNotSupported
	}
	existing, err := r.state.RegistryGetToken(asset)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotSupported
	}
	oldFeed := existing.Feed
	existing.Feed = feed
	if err := r.state.RegistryPutToken(existing); err != nil {
		return err
	}

	var assetBytes, oldBytes, newBytes [20]byte
	copy(assetBytes[:], asset.Bytes())
	copy(oldBytes[:], oldFeed.Bytes())
	copy(newBytes[:], feed.Bytes())
	r.emit(events.TokenFeedChanged{Asset: assetBytes, OldFeed: oldBytes, NewFeed: newBytes})
	return nil
}

// IsSupported reports whether the asset may be used with the loan engine. It
// is true for the two implicit assets and any registered token. The predicate
// gates every loan engine entry point that takes an asset argument.
func (r *Registry) IsSupported(asset crypto.Address) (bool, error) {
	if r == nil || r.state == nil {
		return false, errStateNotConfigured
	}
	if asset.IsZero() {
		return false, nil
	}
	if r.isImplicit(asset) {
		return true, nil
	}
	token, err := r.state.RegistryGetToken(asset)
	if err != nil {
		return false, err
	}
	return token != nil, nil
}

// PriceFeed resolves the feed reference for a registered asset.
func (r *Registry) PriceFeed(asset crypto.Address) (crypto.Address, error) {
	if r == nil || r.state == nil {
		return crypto.Address{}, errStateNotConfigured
	}
	token, err := r.state.RegistryGetToken(asset)
	if err != nil {
		return crypto.Address{}, err
	}
	if token == nil {
		return crypto.Address{}, ErrNotSupported
	}
	return token.Feed, nil
}

// TokenCount returns the number of explicitly registered assets.
func (r *Registry) TokenCount() (uint64, error) {
	if r == nil || r.state == nil {
		return 0, errStateNotConfigured
	}
	return r.state.RegistryTokenCount()
}
