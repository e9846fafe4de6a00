package events

const (
	// TypeTokenAdded is emitted when a collateral asset is registered.
	TypeTokenAdded = "registry.token.added"
	// TypeTokenRemoved is emitted when a collateral asset is deregistered.
	TypeTokenRemoved = "registry.token.removed"
	// TypeTokenFeedChanged is emitted when a registered asset's price feed
	// reference is replaced.
	TypeTokenFeedChanged = "registry.token.feed.changed"
)

// TokenAdded captures a new collateral asset registration.
type TokenAdded struct {
	Asset [20]byte
	Feed  [20]byte
	Total uint64
}

func (TokenAdded) EventType() string { return TypeTokenAdded }

// TokenRemoved captures a collateral asset deregistration.
type TokenRemoved struct {
	Asset [20]byte
	Total uint64
}

func (TokenRemoved) EventType() string { return TypeTokenRemoved }

// TokenFeedChanged captures a price feed replacement for a registered asset.
type TokenFeedChanged struct {
	Asset   [20]byte
	OldFeed [20]byte
	NewFeed [20]byte
}

func (TokenFeedChanged) EventType() string { return TypeTokenFeedChanged }
