package common

import (
	"errors"

	"bigbangchain/crypto"
)

// Role enumerates the closed set of principals recognised by the engine.
// Role identity is the enum value itself; there is no runtime name hashing.
type Role uint8

const (
	// RoleAdmin may replace business parameters and mutate the token
	// registry.
	RoleAdmin Role = iota + 1
	// RoleAdjuster may nudge adjustable parameters by one unit. It is
	// granted to the governance voter module only.
	RoleAdjuster
	// RoleOwner may withdraw the accrued owner share.
	RoleOwner
)

// ErrUnauthorized is returned when the caller lacks the role an entry point
// requires.
var ErrUnauthorized = errors.New("unauthorized")

// RoleView answers role membership questions for gated entry points.
type RoleView interface {
	HasRole(role Role, addr crypto.Address) bool
}

// RequireRole fails with ErrUnauthorized unless the view grants the role to
// the address. A nil view denies everything.
func RequireRole(view RoleView, role Role, addr crypto.Address) error {
	if view == nil || !view.HasRole(role, addr) {
		return ErrUnauthorized
	}
	return nil
}

// Roles is an in-memory grant table keyed by (role, principal). The host seeds
// it at genesis; grant/revoke administration is outside the engine.
type Roles struct {
	grants map[Role]map[string]bool
}

// NewRoles constructs an empty grant table.
func NewRoles() *Roles {
	return &Roles{grants: make(map[Role]map[string]bool)}
}

// Grant records a role for the address.
func (r *Roles) Grant(role Role, addr crypto.Address) {
	if r == nil {
		return
	}
	if r.grants[role] == nil {
		r.grants[role] = make(map[string]bool)
	}
	r.grants[role][string(addr.Bytes())] = true
}

// Revoke removes a role from the address.
func (r *Roles) Revoke(role Role, addr crypto.Address) {
	if r == nil || r.grants[role] == nil {
		return
	}
	delete(r.grants[role], string(addr.Bytes()))
}

// HasRole implements the RoleView interface.
func (r *Roles) HasRole(role Role, addr crypto.Address) bool {
	if r == nil {
		return false
	}
	return r.grants[role][string(addr.Bytes())]
}
