package process

import (
	"errors"
	"time"
)

// State transition errors.
var (
	ErrInvalidTransition = errors.New("invalid slot state transition")
)

// SlotState represents where a process slot is in the exec/exit/join protocol.
type SlotState string

const (
	// StateFree indicates the slot holds no process.
	StateFree SlotState = "free"
	// StateAllocated indicates the slot holds a live process.
	StateAllocated SlotState = "allocated"
	// StateExitedPendingJoin indicates the process published its exit code
	// and is waiting for its parent to acknowledge it.
	StateExitedPendingJoin SlotState = "exited-pending-join"
	// StateReclaimed indicates the slot was released and the PCB discarded.
	StateReclaimed SlotState = "reclaimed"
)

// StateTransition represents a valid state transition.
type StateTransition struct {
	From SlotState
	To   SlotState
}

// ValidTransitions defines all valid state transitions.
var ValidTransitions = []StateTransition{
	// Exec: Free -> Allocated
	{From: StateFree, To: StateAllocated},
	// Exit publishes the exit code: Allocated -> ExitedPendingJoin
	{From: StateAllocated, To: StateExitedPendingJoin},
	// Parent acknowledged, slot freed: ExitedPendingJoin -> Reclaimed
	{From: StateExitedPendingJoin, To: StateReclaimed},
}

// IsValidTransition checks if a state transition is valid.
func IsValidTransition(from, to SlotState) bool {
	for _, t := range ValidTransitions {
		if t.From == from && t.To == to {
			return true
		}
	}
	return false
}

// State returns the slot state of the process.
func (p *PCB) State() SlotState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// TransitionTo attempts to move the process to a new slot state.
func (p *PCB) TransitionTo(to SlotState) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !IsValidTransition(p.state, to) {
		return ErrInvalidTransition
	}

	p.state = to

	switch to {
	case StateExitedPendingJoin:
		p.ExitedAt = time.Now()
	case StateReclaimed:
		p.ReclaimedAt = time.Now()
	}

	return nil
}

// IsAlive returns true if the process has not published an exit code yet.
func (p *PCB) IsAlive() bool {
	return p.State() == StateAllocated
}

// Lifetime returns how long the process has existed, or existed until it
// exited.
func (p *PCB) Lifetime() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.ExitedAt.IsZero() {
		return p.ExitedAt.Sub(p.CreatedAt)
	}
	return time.Since(p.CreatedAt)
}
