package bitmap

import (
	"sync"
	"testing"
)

// TestBitmapFindMarkClear tests the basic slot operations.
func TestBitmapFindMarkClear(t *testing.T) {
	b := New(4)

	if i, ok := b.FindFree(); !ok || i != 0 {
		t.Fatalf("FindFree() = %d, %v, want 0, true", i, ok)
	}

	// FindFree must not mark
	if b.Test(0) {
		t.Error("FindFree() marked bit 0")
	}

	b.Mark(0)
	b.Mark(2)
	if i, _ := b.FindFree(); i != 1 {
		t.Errorf("FindFree() = %d, want 1", i)
	}
	if b.NumClear() != 2 {
		t.Errorf("NumClear() = %d, want 2", b.NumClear())
	}

	b.Clear(0)
	if b.Test(0) {
		t.Error("Test(0) = true after Clear")
	}
	if i, _ := b.FindFree(); i != 0 {
		t.Errorf("FindFree() = %d, want 0 after Clear", i)
	}
}

// TestBitmapIdempotent tests that Mark and Clear can be repeated.
func TestBitmapIdempotent(t *testing.T) {
	b := New(3)

	b.Mark(1)
	b.Mark(1)
	if b.NumClear() != 2 {
		t.Errorf("NumClear() = %d, want 2 after double Mark", b.NumClear())
	}

	b.Clear(1)
	b.Clear(1)
	if b.NumClear() != 3 {
		t.Errorf("NumClear() = %d, want 3 after double Clear", b.NumClear())
	}
}

// TestBitmapOutOfRange tests that bad indices are ignored.
func TestBitmapOutOfRange(t *testing.T) {
	b := New(2)

	tests := []int{-1, 2, 100}
	for _, i := range tests {
		b.Mark(i)
		b.Clear(i)
		if b.Test(i) {
			t.Errorf("Test(%d) = true, want false", i)
		}
	}
	if b.NumClear() != 2 {
		t.Errorf("NumClear() = %d, want 2", b.NumClear())
	}
}

// TestBitmapFull tests allocation until exhaustion.
func TestBitmapFull(t *testing.T) {
	b := New(3)

	for want := 0; want < 3; want++ {
		i, ok := b.Alloc()
		if !ok || i != want {
			t.Fatalf("Alloc() = %d, %v, want %d, true", i, ok, want)
		}
	}

	if i, ok := b.Alloc(); ok {
		t.Errorf("Alloc() = %d on full bitmap, want failure", i)
	}
	if _, ok := b.FindFree(); ok {
		t.Error("FindFree() succeeded on full bitmap")
	}
}

// TestBitmapConcurrentAlloc tests that concurrent callers never share a slot.
func TestBitmapConcurrentAlloc(t *testing.T) {
	const n = 64
	b := New(n)

	var wg sync.WaitGroup
	results := make(chan int, n*2)
	for g := 0; g < n*2; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i, ok := b.Alloc(); ok {
				results <- i
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int]bool)
	for i := range results {
		if seen[i] {
			t.Fatalf("slot %d allocated twice", i)
		}
		seen[i] = true
	}
	if len(seen) != n {
		t.Errorf("allocated %d slots, want %d", len(seen), n)
	}
}

// TestBitmapEach tests iteration over set bits.
func TestBitmapEach(t *testing.T) {
	b := New(5)
	b.Mark(4)
	b.Mark(1)

	var got []int
	b.Each(func(i int) { got = append(got, i) })

	if len(got) != 2 || got[0] != 1 || got[1] != 4 {
		t.Errorf("Each() visited %v, want [1 4]", got)
	}
}
