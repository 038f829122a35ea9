// Package machine models the slice of the simulated CPU the kernel talks to:
// the register file, a flat bounds-checked user address space, and the
// exception entry point into the kernel.
package machine

import (
	"errors"
	"fmt"
	"sync"
)

// Register numbers.
const (
	// NumGPRegs is the number of general purpose registers.
	NumGPRegs = 32
	// ResultReg holds the syscall code on entry and the result on return.
	ResultReg = 2
	// Arg1Reg through Arg4Reg hold the syscall arguments.
	Arg1Reg = 4
	Arg2Reg = 5
	Arg3Reg = 6
	Arg4Reg = 7
	// StackReg is the user stack pointer.
	StackReg = 29
	// RetAddrReg holds the return address of a procedure call.
	RetAddrReg = 31

	HiReg        = 32
	LoReg        = 33
	PCReg        = 34
	NextPCReg    = 35
	PrevPCReg    = 36
	LoadReg      = 37
	LoadValueReg = 38
	BadVAddrReg  = 39

	// NumTotalRegs is the size of the register file.
	NumTotalRegs = 40
)

// InstrWidth is the size of one instruction in bytes.
const InstrWidth = 4

// DefaultMemorySize is the default user address space size in bytes.
const DefaultMemorySize = 64 * 1024

// Machine errors.
var (
	ErrBadRegister = errors.New("machine: bad register number")
	ErrBadSize     = errors.New("machine: bad access size")
	ErrNoHandler   = errors.New("machine: no exception handler installed")
)

// AddressError reports an access outside the user address space.
type AddressError struct {
	Addr int
	Size int
}

// Error returns the error message.
func (e *AddressError) Error() string {
	return fmt.Sprintf("machine: address %#x (+%d) outside user memory", e.Addr, e.Size)
}

// IsAddressError checks if an error is an address error.
func IsAddressError(err error) bool {
	var ae *AddressError
	return errors.As(err, &ae)
}

// ExceptionHandler is the kernel entry point.
type ExceptionHandler func(m *Machine, which ExceptionType)

// Machine is the CPU state of one user process.
type Machine struct {
	mu      sync.Mutex
	regs    [NumTotalRegs]int32
	mem     []byte
	handler ExceptionHandler
}

// New creates a machine with size bytes of zeroed user memory. The program
// counter starts at 0 and the stack pointer at the top of memory.
func New(size int) *Machine {
	if size <= 0 {
		size = DefaultMemorySize
	}
	m := &Machine{mem: make([]byte, size)}
	m.regs[PCReg] = 0
	m.regs[NextPCReg] = InstrWidth
	m.regs[StackReg] = int32(size)
	return m
}

// SetHandler installs the kernel exception handler.
func (m *Machine) SetHandler(h ExceptionHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = h
}

// MemorySize returns the size of the user address space.
func (m *Machine) MemorySize() int {
	return len(m.mem)
}

// ReadRegister returns the value of register r. Bad register numbers read
// as zero.
func (m *Machine) ReadRegister(r int) int32 {
	if r < 0 || r >= NumTotalRegs {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.regs[r]
}

// WriteRegister sets register r. Register 0 is hard-wired to zero.
func (m *Machine) WriteRegister(r int, v int32) error {
	if r < 0 || r >= NumTotalRegs {
		return ErrBadRegister
	}
	if r == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regs[r] = v
	return nil
}

// AdvancePC moves the program counter triple forward by one instruction.
func (m *Machine) AdvancePC() {
	m.mu.Lock()
	defer m.mu.Unlock()

	pc := m.regs[PCReg]
	m.regs[PrevPCReg] = pc
	m.regs[PCReg] = m.regs[NextPCReg]
	m.regs[NextPCReg] = m.regs[NextPCReg] + InstrWidth
}

// RaiseException transfers control to the kernel.
func (m *Machine) RaiseException(which ExceptionType, badVAddr int) error {
	m.mu.Lock()
	h := m.handler
	if which != SyscallException && which != NoException {
		m.regs[BadVAddrReg] = int32(badVAddr)
	}
	m.mu.Unlock()

	if h == nil {
		return ErrNoHandler
	}
	h(m, which)
	return nil
}
