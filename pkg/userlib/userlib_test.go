package userlib

import (
	"errors"
	"testing"

	"nachos/pkg/machine"
	"nachos/pkg/userprog"
)

// TestLoader tests program registration and lookup.
func TestLoader(t *testing.T) {
	l := NewLoader()
	prog := func(p *Proc) int { return 3 }

	if err := l.Register("b", prog); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if err := l.Register("a", prog); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if err := l.Register("a", prog); !errors.Is(err, ErrProgramExists) {
		t.Errorf("duplicate Register() error = %v", err)
	}
	if err := l.Register("", prog); !errors.Is(err, ErrEmptyName) {
		t.Errorf("empty Register() error = %v", err)
	}

	got, ok := l.Lookup("a")
	if !ok || got(nil) != 3 {
		t.Error("Lookup(a) did not return the program")
	}
	if l.Exists("c") {
		t.Error("Exists(c) = true")
	}

	names := l.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("Names() = %v", names)
	}
}

// TestMalloc tests the bump allocator below the scratch region.
func TestMalloc(t *testing.T) {
	p := NewProc(machine.New(4096))

	a, err := p.Malloc(100)
	if err != nil || a != 0 {
		t.Fatalf("Malloc(100) = %d, %v", a, err)
	}
	b, err := p.Malloc(100)
	if err != nil || b != 100 {
		t.Fatalf("Malloc(100) = %d, %v", b, err)
	}
	if _, err := p.Malloc(4096); !errors.Is(err, ErrOutOfMemory) {
		t.Errorf("Malloc(4096) error = %v", err)
	}
	if _, err := p.Malloc(-1); !errors.Is(err, ErrOutOfMemory) {
		t.Errorf("Malloc(-1) error = %v", err)
	}

	if err := p.Poke(a, []byte("hi\x00")); err != nil {
		t.Fatalf("Poke() failed: %v", err)
	}
	if s := p.PeekString(a, 10); s != "hi" {
		t.Errorf("PeekString() = %q", s)
	}
}

// TestSyscallStubs tests how stubs load registers and read the result.
func TestSyscallStubs(t *testing.T) {
	m := machine.New(4096)
	p := NewProc(m)

	var code, a1, a2, a3 int32
	var name string
	m.SetHandler(func(m *machine.Machine, which machine.ExceptionType) {
		if which != machine.SyscallException {
			t.Errorf("exception = %v", which)
		}
		code = m.ReadRegister(machine.ResultReg)
		a1 = m.ReadRegister(machine.Arg1Reg)
		a2 = m.ReadRegister(machine.Arg2Reg)
		a3 = m.ReadRegister(machine.Arg3Reg)
		if userprog.Code(code) == userprog.CodeOpen {
			name, _ = m.UserToKernel(int(a1), 64)
		}
		m.WriteRegister(machine.ResultReg, 5)
	})

	if got := p.Read(16, 8, 3); got != 5 {
		t.Errorf("Read() = %d, want 5", got)
	}
	if userprog.Code(code) != userprog.CodeRead || a1 != 16 || a2 != 8 || a3 != 3 {
		t.Errorf("Read() registers = %d %d %d %d", code, a1, a2, a3)
	}

	if got := p.Open("data.txt", OpenReadOnly); got != 5 {
		t.Errorf("Open() = %d, want 5", got)
	}
	if name != "data.txt" || a2 != OpenReadOnly {
		t.Errorf("Open() passed %q, mode %d", name, a2)
	}
	if a1 != int32(m.MemorySize()-ScratchSize) {
		t.Errorf("name at %d, want scratch region", a1)
	}
}

// TestSyscallWithoutHandler tests that a stub panics when no kernel is attached.
func TestSyscallWithoutHandler(t *testing.T) {
	p := NewProc(machine.New(4096))

	defer func() {
		if recover() == nil {
			t.Error("syscall without handler did not panic")
		}
	}()
	p.Halt()
}
