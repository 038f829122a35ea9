package synch

import (
	"context"
	"sync"
)

// Rendezvous is a single-use two-phase handshake between a publisher and
// one consumer. The publisher hands over a value and then waits for an
// acknowledgement; the consumer waits for the value and acknowledges it
// through the Receipt it received. A consumer cannot acknowledge before it
// has seen the value, so the publisher can never observe an ack for a
// result nobody read.
type Rendezvous[T any] struct {
	value       T
	publishOnce sync.Once
	ackOnce     sync.Once
	published   chan struct{}
	acked       chan struct{}
}

// Receipt is handed to the consumer by Await. Ack releases the publisher.
type Receipt[T any] struct {
	r     *Rendezvous[T]
	Value T
}

// NewRendezvous creates an unused rendezvous.
func NewRendezvous[T any]() *Rendezvous[T] {
	return &Rendezvous[T]{
		published: make(chan struct{}),
		acked:     make(chan struct{}),
	}
}

// Publish stores v and wakes the consumer. Only the first call has any
// effect; it reports whether this call was the one that published.
func (r *Rendezvous[T]) Publish(v T) bool {
	done := false
	r.publishOnce.Do(func() {
		r.value = v
		close(r.published)
		done = true
	})
	return done
}

// Await blocks until a value has been published or ctx is done.
func (r *Rendezvous[T]) Await(ctx context.Context) (Receipt[T], error) {
	select {
	case <-r.published:
		return Receipt[T]{r: r, Value: r.value}, nil
	default:
	}

	select {
	case <-r.published:
		return Receipt[T]{r: r, Value: r.value}, nil
	case <-ctx.Done():
		return Receipt[T]{}, cause(ctx, ctx.Err())
	}
}

// AwaitAck blocks until the consumer acknowledged or ctx is done.
func (r *Rendezvous[T]) AwaitAck(ctx context.Context) error {
	select {
	case <-r.acked:
		return nil
	default:
	}

	select {
	case <-r.acked:
		return nil
	case <-ctx.Done():
		return cause(ctx, ctx.Err())
	}
}

// Published reports whether a value has been published.
func (r *Rendezvous[T]) Published() bool {
	select {
	case <-r.published:
		return true
	default:
		return false
	}
}

// Acked reports whether the consumer acknowledged.
func (r *Rendezvous[T]) Acked() bool {
	select {
	case <-r.acked:
		return true
	default:
		return false
	}
}

// Ack releases the publisher. Repeated calls are no-ops.
func (rc Receipt[T]) Ack() {
	if rc.r == nil {
		return
	}
	rc.r.ackOnce.Do(func() {
		close(rc.r.acked)
	})
}
