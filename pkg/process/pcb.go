package process

import (
	"context"
	"sync"
	"time"

	"nachos/pkg/synch"
)

// NoParent is the parent id of the root process.
const NoParent = -1

// PCB is the process control block of one process slot.
type PCB struct {
	// ID is the slot index of the process.
	ID int
	// ParentID is the slot index of the process that executed this one.
	ParentID int
	// CreatedAt is when the slot was allocated.
	CreatedAt time.Time
	// ExitedAt is when the process published its exit code.
	ExitedAt time.Time
	// ReclaimedAt is when the slot was released.
	ReclaimedAt time.Time

	name   string
	parent *PCB

	// mu guards the wait counter, exit code and slot state.
	mu       sync.Mutex
	numWait  int
	exitCode int
	state    SlotState

	// handshake carries the exit code to the joining parent and the
	// parent's acknowledgement back to the exiting process.
	handshake *synch.Rendezvous[int]
}

// NewPCB creates the control block for a freshly allocated slot.
func NewPCB(id, parentID int, name string) *PCB {
	return &PCB{
		ID:        id,
		ParentID:  parentID,
		CreatedAt: time.Now(),
		name:      name,
		state:     StateAllocated,
		handshake: synch.NewRendezvous[int](),
	}
}

// Name returns the executable name the process was started from.
func (p *PCB) Name() string {
	return p.name
}

// SetExitCode records the exit code. Only the owning process calls it,
// before SignalJoin.
func (p *PCB) SetExitCode(code int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exitCode = code
}

// ExitCode returns the recorded exit code.
func (p *PCB) ExitCode() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitCode
}

// IncWait increments the outstanding-wait counter.
func (p *PCB) IncWait() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.numWait++
}

// DecWait decrements the outstanding-wait counter. It saturates at zero.
func (p *PCB) DecWait() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.numWait > 0 {
		p.numWait--
	}
}

// WaitCount returns the outstanding-wait counter.
func (p *PCB) WaitCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.numWait
}

// SignalJoin publishes the exit code to a joining parent. Only the first
// call has any effect.
func (p *PCB) SignalJoin() {
	p.handshake.Publish(p.ExitCode())
}

// WaitJoin blocks until the process has signalled join. The returned
// receipt carries the exit code and must be passed to SignalExit.
func (p *PCB) WaitJoin(ctx context.Context) (synch.Receipt[int], error) {
	return p.handshake.Await(ctx)
}

// SignalExit lets the exiting process release its slot.
func (p *PCB) SignalExit(rc synch.Receipt[int]) {
	rc.Ack()
}

// WaitExit blocks until the parent acknowledged the exit code.
func (p *PCB) WaitExit(ctx context.Context) error {
	return p.handshake.AwaitAck(ctx)
}

// Joined reports whether a parent acknowledged the exit code.
func (p *PCB) Joined() bool {
	return p.handshake.Acked()
}
