// Package synch provides the synchronization primitives the kernel hands
// out to processes: counting semaphores and the single-use rendezvous used
// by the join/exit handshake.
//
// Every blocking operation takes a context. The kernel cancels that context
// with ErrHalted at shutdown, which is the only way a blocked caller is
// released without the matching signal.
package synch

import (
	"context"
	"errors"
	"math"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// ErrHalted is the cancellation cause used when the kernel shuts down.
var ErrHalted = errors.New("synch: kernel halted")

// maxPermits is the weighted semaphore size. V never has to release more
// than was acquired at construction, so it cannot overflow in practice.
const maxPermits = math.MaxInt64 / 2

// Semaphore is a counting semaphore. P blocks while the count is zero and
// waiters are released in FIFO order; V never blocks.
type Semaphore struct {
	name  string
	w     *semaphore.Weighted
	value atomic.Int64
}

// NewSemaphore creates a semaphore holding initial permits. A negative
// initial count is treated as zero.
func NewSemaphore(name string, initial int64) *Semaphore {
	if initial < 0 {
		initial = 0
	}
	if initial > maxPermits {
		initial = maxPermits
	}

	s := &Semaphore{
		name: name,
		w:    semaphore.NewWeighted(maxPermits),
	}
	// Hold everything except the initial permits; V hands them back one by one.
	s.w.TryAcquire(maxPermits - initial)
	s.value.Store(initial)
	return s
}

// Name returns the debugging name of the semaphore.
func (s *Semaphore) Name() string {
	return s.name
}

// P decrements the count, blocking until it is positive or ctx is done.
func (s *Semaphore) P(ctx context.Context) error {
	if err := s.w.Acquire(ctx, 1); err != nil {
		return cause(ctx, err)
	}
	s.value.Add(-1)
	return nil
}

// TryP decrements the count if it is positive and reports whether it did.
func (s *Semaphore) TryP() bool {
	if !s.w.TryAcquire(1) {
		return false
	}
	s.value.Add(-1)
	return true
}

// V increments the count, waking at most one blocked P.
func (s *Semaphore) V() {
	s.value.Add(1)
	s.w.Release(1)
}

// Value returns the current count. It is a snapshot and may be stale by
// the time the caller looks at it.
func (s *Semaphore) Value() int64 {
	return s.value.Load()
}

func cause(ctx context.Context, err error) error {
	if c := context.Cause(ctx); c != nil {
		return c
	}
	return err
}
