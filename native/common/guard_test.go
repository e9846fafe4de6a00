package common

import (
	"bytes"
	"errors"
	"testing"

	"bigbangchain/crypto"
)

type pauseMap map[string]bool

func (p pauseMap) IsPaused(module string) bool { return p[module] }

func TestGuard(t *testing.T) {
	pauses := pauseMap{"loan": true}
	if err := Guard(pauses, "loan"); !errors.Is(err, ErrModulePaused) {
		t.Fatalf("paused module: expected ErrModulePaused, got %v", err)
	}
	if err := Guard(pauses, "voting"); err != nil {
		t.Fatalf("unpaused module: %v", err)
	}
	if err := Guard(nil, "loan"); err != nil {
		t.Fatalf("nil view: %v", err)
	}
	if err := Guard(pauses, ""); err != nil {
		t.Fatalf("empty module: %v", err)
	}
}

func TestReentrancyGuard(t *testing.T) {
	guard := &ReentrancyGuard{}
	if err := guard.Enter(); err != nil {
		t.Fatalf("first enter: %v", err)
	}
	if err := guard.Enter(); !errors.Is(err, ErrReentrantCall) {
		t.Fatalf("nested enter: expected ErrReentrantCall, got %v", err)
	}
	guard.Exit()
	if err := guard.Enter(); err != nil {
		t.Fatalf("enter after exit: %v", err)
	}
	guard.Exit()

	var nilGuard *ReentrancyGuard
	if err := nilGuard.Enter(); err != nil {
		t.Fatalf("nil guard enter: %v", err)
	}
	nilGuard.Exit()
}

func TestRoles(t *testing.T) {
	roles := NewRoles()
	admin := crypto.MustNewAddress(crypto.BBGPrefix, bytes.Repeat([]byte{0xAD}, 20))
	other := crypto.MustNewAddress(crypto.BBGPrefix, bytes.Repeat([]byte{0x01}, 20))

	roles.Grant(RoleAdmin, admin)
	if !roles.HasRole(RoleAdmin, admin) {
		t.Fatal("granted role missing")
	}
	if roles.HasRole(RoleAdmin, other) {
		t.Fatal("ungranted address has role")
	}
	if roles.HasRole(RoleOwner, admin) {
		t.Fatal("role grants must not bleed across roles")
	}

	if err := RequireRole(roles, RoleAdmin, admin); err != nil {
		t.Fatalf("require granted role: %v", err)
	}
	if err := RequireRole(roles, RoleAdmin, other); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := RequireRole(nil, RoleAdmin, admin); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("nil view must deny, got %v", err)
	}

	roles.Revoke(RoleAdmin, admin)
	if roles.HasRole(RoleAdmin, admin) {
		t.Fatal("revoked role still present")
	}
}
