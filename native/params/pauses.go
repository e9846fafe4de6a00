package params

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PausesKey stores the per-module pause toggle record.
const PausesKey = "system/pauses"

// Pauses reads and writes the per-module pause toggles persisted in the
// parameter store. It satisfies the pause view the engines guard on; an absent
// record means nothing is paused.
type Pauses struct {
	state StoreState
}

// NewPauses constructs a pause view over the supplied state backend.
func NewPauses(state StoreState) *Pauses {
	return &Pauses{state: state}
}

func (p *Pauses) load() (map[string]bool, error) {
	if p == nil || p.state == nil {
		return nil, fmt.Errorf("params: state not configured")
	}
	raw, ok, err := p.state.ParamStoreGet(PausesKey)
	if err != nil {
		return nil, fmt.Errorf("params: load pauses: %w", err)
	}
	if !ok || len(bytes.TrimSpace(raw)) == 0 {
		return map[string]bool{}, nil
	}
	toggles := make(map[string]bool)
	if err := json.Unmarshal(raw, &toggles); err != nil {
		return nil, fmt.Errorf("params: decode pauses: %w", err)
	}
	return toggles, nil
}

// IsPaused reports whether the named module's pause toggle is enabled. Load
// failures read as not paused; the guard must not brick the engines when the
// record is unreadable.
func (p *Pauses) IsPaused(module string) bool {
	toggles, err := p.load()
	if err != nil {
		return false
	}
	return toggles[module]
}

// SetPaused persists a pause toggle for the named module.
func (p *Pauses) SetPaused(module string, paused bool) error {
	toggles, err := p.load()
	if err != nil {
		return err
	}
	if paused {
		toggles[module] = true
	} else {
		delete(toggles, module)
	}
	encoded, err := json.Marshal(toggles)
	if err != nil {
		return fmt.Errorf("params: encode pauses: %w", err)
	}
	return p.state.ParamStoreSet(PausesKey, encoded)
}
