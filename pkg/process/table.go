package process

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"

	"nachos/pkg/bitmap"
)

// MaxProcess is the default process table capacity.
const MaxProcess = 10

// RootID is the slot of the root (scheduler) process.
const RootID = 0

// Process table errors.
var (
	ErrInvalidName  = errors.New("invalid executable name")
	ErrSelfExec     = errors.New("process cannot execute itself or the root program")
	ErrNoFreeSlot   = errors.New("no free process slot")
	ErrInvalidPID   = errors.New("invalid process id")
	ErrNotParent    = errors.New("not the parent process")
	ErrInvalidSize  = errors.New("invalid process table size")
	ErrRootReserved = errors.New("root slot is reserved")
)

// Launcher starts the execution context of a freshly created process.
// It is called with the table's exec lock held and must not block.
type Launcher func(p *PCB) error

// Option configures a Table.
type Option func(*Table)

// WithLogger sets the table logger.
func WithLogger(logger hclog.Logger) Option {
	return func(t *Table) {
		t.logger = logger
	}
}

// WithLauncher sets the function that starts new processes.
func WithLauncher(launch Launcher) Option {
	return func(t *Table) {
		t.launch = launch
	}
}

// WithHalter sets the function called when the root process exits.
func WithHalter(halt func()) Option {
	return func(t *Table) {
		t.halt = halt
	}
}

// Table is the bounded process table. Slot 0 is pre-seeded with the root
// process at construction.
type Table struct {
	// bm marks the slots that hold a live PCB.
	bm *bitmap.Bitmap
	// pcbs holds the control blocks by slot.
	pcbs []*PCB
	// mu protects pcbs.
	mu sync.RWMutex
	// execMu serializes process creation.
	execMu sync.Mutex

	rootName string
	launch   Launcher
	halt     func()
	logger   hclog.Logger
}

// NewTable creates a process table with size slots and seeds the root slot.
func NewTable(size int, rootName string, opts ...Option) (*Table, error) {
	if size < 1 {
		return nil, ErrInvalidSize
	}
	if rootName == "" {
		return nil, ErrInvalidName
	}

	t := &Table{
		bm:       bitmap.New(size),
		pcbs:     make([]*PCB, size),
		rootName: rootName,
		logger:   hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}

	t.bm.Mark(RootID)
	t.pcbs[RootID] = NewPCB(RootID, NoParent, rootName)

	return t, nil
}

// Size returns the capacity of the table.
func (t *Table) Size() int {
	return len(t.pcbs)
}

// RootName returns the executable name of the root process.
func (t *Table) RootName() string {
	return t.rootName
}

// Get returns the PCB in slot id.
func (t *Table) Get(id int) (*PCB, error) {
	if id < 0 || id >= len(t.pcbs) || !t.bm.Test(id) {
		return nil, ErrInvalidPID
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	p := t.pcbs[id]
	if p == nil {
		return nil, ErrInvalidPID
	}
	return p, nil
}

// IsExist reports whether slot id holds a live process.
func (t *Table) IsExist(id int) bool {
	_, err := t.Get(id)
	return err == nil
}

// GetFileName returns the executable name of process id.
func (t *Table) GetFileName(id int) (string, error) {
	p, err := t.Get(id)
	if err != nil {
		return "", err
	}
	return p.Name(), nil
}

// Count returns the number of allocated slots.
func (t *Table) Count() int {
	return t.bm.Size() - t.bm.NumClear()
}

// Processes returns the live PCBs in slot order.
func (t *Table) Processes() []*PCB {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]*PCB, 0, len(t.pcbs))
	for _, p := range t.pcbs {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

// ExecUpdate creates a child of process callerID running the executable
// name and starts it. On failure no slot is consumed.
func (t *Table) ExecUpdate(callerID int, name string) (int, error) {
	t.execMu.Lock()
	defer t.execMu.Unlock()

	if name == "" {
		t.logger.Warn("cannot execute, name is empty", "caller", callerID)
		return -1, ErrInvalidName
	}

	caller, err := t.Get(callerID)
	if err != nil {
		return -1, fmt.Errorf("exec caller %d: %w", callerID, err)
	}

	if name == t.rootName || name == caller.Name() {
		t.logger.Warn("cannot execute itself", "caller", callerID, "name", name)
		return -1, ErrSelfExec
	}

	id, ok := t.bm.Alloc()
	if !ok {
		t.logger.Warn("cannot get free slot", "caller", callerID, "name", name)
		return -1, ErrNoFreeSlot
	}

	p := NewPCB(id, callerID, name)
	p.parent = caller
	t.set(id, p)

	if t.launch != nil {
		if err := t.launch(p); err != nil {
			t.set(id, nil)
			t.bm.Clear(id)
			return -1, fmt.Errorf("launch %s: %w", name, err)
		}
	}

	t.logger.Debug("process created", "pid", id, "parent", callerID, "name", name)
	return id, nil
}

// JoinUpdate blocks until child id exits and returns its exit code. Only
// the recorded parent of id may join it; any other caller fails without
// blocking.
func (t *Table) JoinUpdate(ctx context.Context, callerID, id int) (int, error) {
	child, err := t.Get(id)
	if err != nil {
		t.logger.Warn("cannot join, id is invalid", "caller", callerID, "pid", id)
		return -1, err
	}

	if child.ParentID != callerID {
		t.logger.Warn("cannot join, not the parent", "caller", callerID, "pid", id, "parent", child.ParentID)
		return -1, ErrNotParent
	}

	if parent, err := t.Get(callerID); err == nil {
		parent.IncWait()
	}

	rc, err := child.WaitJoin(ctx)
	if err != nil {
		return -1, err
	}

	code := rc.Value
	child.SignalExit(rc)

	t.logger.Debug("process joined", "pid", id, "parent", callerID, "code", code)
	return code, nil
}

// ExitUpdate records the exit code of process callerID, wakes its joining
// parent and blocks until the parent acknowledged, then releases the slot.
// The root process does not go through the handshake; its exit halts the
// kernel.
func (t *Table) ExitUpdate(ctx context.Context, callerID, code int) (int, error) {
	if callerID == RootID {
		t.logger.Info("root process exited, halting", "code", code)
		if t.halt != nil {
			t.halt()
		}
		return 0, nil
	}

	p, err := t.Get(callerID)
	if err != nil {
		t.logger.Warn("cannot exit, id is invalid", "pid", callerID)
		return -1, err
	}

	if !p.IsAlive() {
		return -1, fmt.Errorf("exit %d: %w", callerID, ErrInvalidTransition)
	}

	p.SetExitCode(code)
	if p.parent != nil {
		p.parent.DecWait()
	}

	if err := p.TransitionTo(StateExitedPendingJoin); err != nil {
		return -1, fmt.Errorf("exit %d: %w", callerID, err)
	}
	p.SignalJoin()

	if err := p.WaitExit(ctx); err != nil {
		return -1, err
	}

	t.Remove(callerID)
	t.logger.Debug("process reclaimed", "pid", callerID, "code", code, "lifetime", p.Lifetime())
	return code, nil
}

// Remove releases slot id and discards its PCB. The root slot is only
// released by Teardown.
func (t *Table) Remove(id int) error {
	if id == RootID {
		return ErrRootReserved
	}
	if id < 0 || id >= len(t.pcbs) {
		return ErrInvalidPID
	}

	t.mu.Lock()
	p := t.pcbs[id]
	t.pcbs[id] = nil
	t.mu.Unlock()

	if p != nil {
		_ = p.TransitionTo(StateReclaimed)
	}
	t.bm.Clear(id)
	return nil
}

// Teardown discards every PCB without running the exit/join handshake.
func (t *Table) Teardown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, p := range t.pcbs {
		if p != nil {
			t.pcbs[id] = nil
			t.bm.Clear(id)
		}
	}
}

func (t *Table) set(id int, p *PCB) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pcbs[id] = p
}
