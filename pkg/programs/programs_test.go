package programs

import (
	"errors"
	"strings"
	"testing"

	"nachos/pkg/userlib"
)

// TestRegister tests that every bundled program is registered once.
func TestRegister(t *testing.T) {
	l := Default()

	for _, name := range []string{Scheduler, Ping, Pong, Help, ASCII, Sort, Echo, Cat, Copy, CreateFile, ScanPassenger, Passenger, Scan} {
		if !l.Exists(name) {
			t.Errorf("program %q not registered", name)
		}
	}
	if err := Register(l); !errors.Is(err, userlib.ErrProgramExists) {
		t.Errorf("second Register() error = %v", err)
	}
}

// TestSortInts tests the quicksort used by the sort program.
func TestSortInts(t *testing.T) {
	tests := []struct {
		name string
		in   []int
		desc bool
		want []int
	}{
		{"empty", []int{}, false, []int{}},
		{"single", []int{4}, false, []int{4}},
		{"increasing", []int{5, -1, 3, 0, 3}, false, []int{-1, 0, 3, 3, 5}},
		{"decreasing", []int{5, -1, 3, 0, 3}, true, []int{5, 3, 3, 0, -1}},
		{"sorted", []int{1, 2, 3, 4}, false, []int{1, 2, 3, 4}},
		{"reversed", []int{4, 3, 2, 1}, false, []int{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := append([]int(nil), tt.in...)
			sortInts(a, tt.desc)
			for i := range tt.want {
				if a[i] != tt.want[i] {
					t.Fatalf("sortInts(%v) = %v, want %v", tt.in, a, tt.want)
				}
			}
		})
	}
}

// TestASCIITable tests the CSV produced by the ascii program.
func TestASCIITable(t *testing.T) {
	lines := strings.Split(strings.TrimSuffix(asciiTable(), "\n"), "\n")
	if len(lines) != 129 {
		t.Fatalf("got %d lines, want 129", len(lines))
	}

	tests := map[int]string{
		0:   "Decimal,Char",
		1:   "0,NULL",
		11:  "10,LF",
		33:  "32,SPACE",
		66:  "65,A",
		128: "127,DEL",
	}
	for i, want := range tests {
		if lines[i] != want {
			t.Errorf("line %d = %q, want %q", i, lines[i], want)
		}
	}
}
