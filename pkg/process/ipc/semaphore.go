// Package ipc provides the named semaphore table processes use to
// synchronize with each other independently of their process ids.
package ipc

import (
	"context"
	"errors"
	"sync"

	"github.com/hashicorp/go-hclog"

	"nachos/pkg/bitmap"
	"nachos/pkg/synch"
)

// MaxSemaphore is the default semaphore table capacity.
const MaxSemaphore = 10

// MaxNameLength bounds the length of a semaphore name.
const MaxNameLength = 32

// Named semaphore errors.
var (
	ErrSemaphoreNotFound = errors.New("semaphore not found")
	ErrSemaphoreExists   = errors.New("semaphore already exists")
	ErrInvalidName       = errors.New("invalid semaphore name")
	ErrInvalidCount      = errors.New("invalid semaphore initial count")
	ErrNoFreeSlot        = errors.New("no free semaphore slot")
)

// NamedSemaphore is an entry of the semaphore table.
type NamedSemaphore struct {
	// Name is the user-chosen semaphore name.
	Name string
	sem  *synch.Semaphore
}

// Value returns the current count of the semaphore.
func (ns *NamedSemaphore) Value() int64 {
	return ns.sem.Value()
}

// SemaphoreTable manages named semaphores in a fixed number of slots.
type SemaphoreTable struct {
	// bm marks the slots that hold an entry.
	bm *bitmap.Bitmap
	// entries holds the semaphores by slot.
	entries []*NamedSemaphore
	// mu protects entries and name lookups.
	mu     sync.Mutex
	logger hclog.Logger
}

// NewSemaphoreTable creates a table with size slots.
func NewSemaphoreTable(size int, logger hclog.Logger) *SemaphoreTable {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &SemaphoreTable{
		bm:      bitmap.New(size),
		entries: make([]*NamedSemaphore, size),
		logger:  logger,
	}
}

// Create registers a semaphore called name holding initial permits.
func (st *SemaphoreTable) Create(name string, initial int) error {
	if name == "" || len(name) > MaxNameLength {
		return ErrInvalidName
	}
	if initial < 0 {
		return ErrInvalidCount
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.lookup(name) != nil {
		st.logger.Warn("cannot create semaphore, name exists", "name", name)
		return ErrSemaphoreExists
	}

	id, ok := st.bm.Alloc()
	if !ok {
		st.logger.Warn("cannot create semaphore, no free slot", "name", name)
		return ErrNoFreeSlot
	}

	st.entries[id] = &NamedSemaphore{
		Name: name,
		sem:  synch.NewSemaphore(name, int64(initial)),
	}

	st.logger.Debug("semaphore created", "name", name, "slot", id, "count", initial)
	return nil
}

// Get retrieves a semaphore by name.
func (st *SemaphoreTable) Get(name string) (*NamedSemaphore, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	ns := st.lookup(name)
	if ns == nil {
		return nil, ErrSemaphoreNotFound
	}
	return ns, nil
}

// Down decrements the semaphore called name, blocking while its count is
// zero. An unknown name fails immediately.
func (st *SemaphoreTable) Down(ctx context.Context, name string) error {
	ns, err := st.Get(name)
	if err != nil {
		st.logger.Warn("cannot down semaphore, not found", "name", name)
		return err
	}
	return ns.sem.P(ctx)
}

// Up increments the semaphore called name, waking at most one waiter.
func (st *SemaphoreTable) Up(name string) error {
	ns, err := st.Get(name)
	if err != nil {
		st.logger.Warn("cannot up semaphore, not found", "name", name)
		return err
	}
	ns.sem.V()
	return nil
}

// Exists checks if a semaphore is registered under name.
func (st *SemaphoreTable) Exists(name string) bool {
	_, err := st.Get(name)
	return err == nil
}

// Names returns the registered names in slot order.
func (st *SemaphoreTable) Names() []string {
	st.mu.Lock()
	defer st.mu.Unlock()

	names := make([]string, 0, len(st.entries))
	for _, ns := range st.entries {
		if ns != nil {
			names = append(names, ns.Name)
		}
	}
	return names
}

// Count returns the number of registered semaphores.
func (st *SemaphoreTable) Count() int {
	return st.bm.Size() - st.bm.NumClear()
}

// Teardown destroys every entry. Processes still blocked in Down are
// released by the kernel context, not by Teardown.
func (st *SemaphoreTable) Teardown() {
	st.mu.Lock()
	defer st.mu.Unlock()

	for id, ns := range st.entries {
		if ns != nil {
			st.entries[id] = nil
			st.bm.Clear(id)
		}
	}
}

// lookup scans the live slots for name. st.mu must be held.
func (st *SemaphoreTable) lookup(name string) *NamedSemaphore {
	var found *NamedSemaphore
	st.bm.Each(func(i int) {
		if found == nil && st.entries[i] != nil && st.entries[i].Name == name {
			found = st.entries[i]
		}
	})
	return found
}
