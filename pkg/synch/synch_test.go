package synch

import (
	"context"
	"errors"
	"testing"
	"time"
)

const blockWindow = 50 * time.Millisecond

// TestSemaphoreInitialCount tests that the initial permits are available.
func TestSemaphoreInitialCount(t *testing.T) {
	s := NewSemaphore("test", 2)
	ctx := context.Background()

	if s.Value() != 2 {
		t.Fatalf("Value() = %d, want 2", s.Value())
	}
	if err := s.P(ctx); err != nil {
		t.Fatalf("P() error = %v", err)
	}
	if err := s.P(ctx); err != nil {
		t.Fatalf("P() error = %v", err)
	}
	if s.TryP() {
		t.Error("TryP() succeeded on empty semaphore")
	}
	if s.Value() != 0 {
		t.Errorf("Value() = %d, want 0", s.Value())
	}
}

// TestSemaphoreNegativeInitial tests that a negative count is clamped.
func TestSemaphoreNegativeInitial(t *testing.T) {
	s := NewSemaphore("neg", -3)
	if s.Value() != 0 {
		t.Errorf("Value() = %d, want 0", s.Value())
	}
}

// TestSemaphoreBlocksUntilV tests the rendezvous use of a zero semaphore.
func TestSemaphoreBlocksUntilV(t *testing.T) {
	s := NewSemaphore("gate", 0)

	done := make(chan error, 1)
	go func() {
		done <- s.P(context.Background())
	}()

	select {
	case err := <-done:
		t.Fatalf("P() returned early with %v", err)
	case <-time.After(blockWindow):
	}

	s.V()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("P() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("P() did not return after V()")
	}

	if s.Value() != 0 {
		t.Errorf("Value() = %d, want 0", s.Value())
	}
}

// TestSemaphoreVWithoutWaiters tests that V accumulates permits.
func TestSemaphoreVWithoutWaiters(t *testing.T) {
	s := NewSemaphore("acc", 0)
	s.V()
	s.V()
	s.V()

	if s.Value() != 3 {
		t.Errorf("Value() = %d, want 3", s.Value())
	}
	for i := 0; i < 3; i++ {
		if !s.TryP() {
			t.Fatalf("TryP() #%d failed", i)
		}
	}
}

// TestSemaphoreHalt tests that cancelling the context releases a waiter.
func TestSemaphoreHalt(t *testing.T) {
	s := NewSemaphore("halt", 0)
	ctx, cancel := context.WithCancelCause(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- s.P(ctx)
	}()

	time.Sleep(blockWindow)
	cancel(ErrHalted)

	select {
	case err := <-done:
		if !errors.Is(err, ErrHalted) {
			t.Errorf("P() error = %v, want ErrHalted", err)
		}
	case <-time.After(time.Second):
		t.Fatal("P() not released by cancellation")
	}

	// The cancelled waiter must not have consumed a permit.
	s.V()
	if s.Value() != 1 {
		t.Errorf("Value() = %d, want 1", s.Value())
	}
}

// TestRendezvousHandshake tests the publish/await/ack ordering.
func TestRendezvousHandshake(t *testing.T) {
	r := NewRendezvous[int]()
	ctx := context.Background()

	acked := make(chan error, 1)
	go func() {
		r.Publish(7)
		acked <- r.AwaitAck(ctx)
	}()

	rc, err := r.Await(ctx)
	if err != nil {
		t.Fatalf("Await() error = %v", err)
	}
	if rc.Value != 7 {
		t.Errorf("Value = %d, want 7", rc.Value)
	}

	select {
	case <-acked:
		t.Fatal("publisher released before Ack")
	case <-time.After(blockWindow):
	}

	rc.Ack()
	rc.Ack()

	select {
	case err := <-acked:
		if err != nil {
			t.Errorf("AwaitAck() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("publisher not released after Ack")
	}

	if !r.Published() || !r.Acked() {
		t.Errorf("Published() = %v, Acked() = %v, want true, true", r.Published(), r.Acked())
	}
}

// TestRendezvousSingleUse tests that only the first Publish counts.
func TestRendezvousSingleUse(t *testing.T) {
	r := NewRendezvous[string]()

	if !r.Publish("first") {
		t.Error("first Publish() = false")
	}
	if r.Publish("second") {
		t.Error("second Publish() = true")
	}

	rc, err := r.Await(context.Background())
	if err != nil {
		t.Fatalf("Await() error = %v", err)
	}
	if rc.Value != "first" {
		t.Errorf("Value = %q, want first", rc.Value)
	}
}

// TestRendezvousCancel tests that both waits honour cancellation.
func TestRendezvousCancel(t *testing.T) {
	r := NewRendezvous[int]()
	ctx, cancel := context.WithCancelCause(context.Background())
	cancel(ErrHalted)

	if _, err := r.Await(ctx); !errors.Is(err, ErrHalted) {
		t.Errorf("Await() error = %v, want ErrHalted", err)
	}
	if err := r.AwaitAck(ctx); !errors.Is(err, ErrHalted) {
		t.Errorf("AwaitAck() error = %v, want ErrHalted", err)
	}

	var zero Receipt[int]
	zero.Ack()
}
