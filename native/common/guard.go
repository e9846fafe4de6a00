package common

import "errors"

var (
	ErrModulePaused  = errors.New("module paused")
	ErrReentrantCall = errors.New("reentrant call")
)

type PauseView interface {
	IsPaused(module string) bool
}

func Guard(p PauseView, module string) error {
	if p == nil || module == "" {
		return nil
	}
	if p.IsPaused(module) {
		return ErrModulePaused
	}
	return nil
}

// ReentrancyGuard is a process-wide busy flag shared by every state-mutating
// engine entry point. The host invokes the engine synchronously, so the flag
// only trips when a token-transfer capability calls back into the engine
// mid-operation.
type ReentrancyGuard struct {
	busy bool
}

// Enter marks the guard busy, failing when a mutating call is already in
// progress. Callers must pair a successful Enter with Exit.
func (g *ReentrancyGuard) Enter() error {
	if g == nil {
		return nil
	}
	if g.busy {
		return ErrReentrantCall
	}
	g.busy = true
	return nil
}

// Exit releases the guard at the end of a mutating call.
func (g *ReentrancyGuard) Exit() {
	if g == nil {
		return
	}
	g.busy = false
}
