// Package bitmap provides a fixed-capacity set of flags used to hand out
// small integer slots (process ids, semaphore entries, open-file handles).
package bitmap

import "sync"

// Bitmap is a bounded set of bits. All methods are safe for concurrent use.
//
// A set bit means the slot is in use. Mark and Clear are idempotent and
// never fail; callers are responsible for not releasing a slot twice.
type Bitmap struct {
	mu   sync.Mutex
	bits []bool
	used int
}

// New creates a bitmap with n bits, all clear.
func New(n int) *Bitmap {
	if n < 0 {
		n = 0
	}
	return &Bitmap{bits: make([]bool, n)}
}

// Size returns the capacity of the bitmap.
func (b *Bitmap) Size() int {
	return len(b.bits)
}

// FindFree returns the lowest clear bit without marking it.
func (b *Bitmap) FindFree() (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.findFree()
}

// Alloc finds the lowest clear bit and marks it in one step.
func (b *Bitmap) Alloc() (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i, ok := b.findFree()
	if !ok {
		return -1, false
	}
	b.bits[i] = true
	b.used++
	return i, true
}

func (b *Bitmap) findFree() (int, bool) {
	for i, set := range b.bits {
		if !set {
			return i, true
		}
	}
	return -1, false
}

// Mark sets bit i. Out-of-range indices are ignored.
func (b *Bitmap) Mark(i int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.inRange(i) || b.bits[i] {
		return
	}
	b.bits[i] = true
	b.used++
}

// Clear clears bit i. Out-of-range indices are ignored.
func (b *Bitmap) Clear(i int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.inRange(i) || !b.bits[i] {
		return
	}
	b.bits[i] = false
	b.used--
}

// Test reports whether bit i is set.
func (b *Bitmap) Test(i int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inRange(i) && b.bits[i]
}

// NumClear returns the number of clear bits.
func (b *Bitmap) NumClear() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.bits) - b.used
}

// Each calls fn for every set bit in ascending order. fn must not call
// back into the bitmap.
func (b *Bitmap) Each(fn func(i int)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, set := range b.bits {
		if set {
			fn(i)
		}
	}
}

func (b *Bitmap) inRange(i int) bool {
	return i >= 0 && i < len(b.bits)
}
