// Package userlib is the user-side syscall library. Programs are Go
// functions that run on a Proc and reach the kernel only through its
// syscall stubs, which marshal arguments into registers and user memory.
package userlib

import (
	"errors"
	"math"

	"nachos/pkg/machine"
	"nachos/pkg/userprog"
)

// ScratchSize is the size of the region at the top of user memory used to
// pass strings into the kernel.
const ScratchSize = 1024

// ErrOutOfMemory is returned by Malloc when the heap is exhausted.
var ErrOutOfMemory = errors.New("userlib: out of user memory")

// Open modes.
const (
	OpenReadWrite = 0
	OpenReadOnly  = 1
	OpenStdin     = 2
	OpenStdout    = 3
)

// Console ids.
const (
	Stdin  = 0
	Stdout = 1
)

// Proc is the user-mode view of one process.
type Proc struct {
	m       *machine.Machine
	brk     int
	scratch int
}

// NewProc creates a Proc over m. The heap starts at address 0 and grows
// up to the scratch region.
func NewProc(m *machine.Machine) *Proc {
	scratch := m.MemorySize() - ScratchSize
	if scratch < 0 {
		scratch = 0
	}
	return &Proc{m: m, scratch: scratch}
}

// Machine returns the machine the process runs on.
func (p *Proc) Machine() *machine.Machine {
	return p.m
}

// Malloc reserves n bytes of user memory and returns their address.
func (p *Proc) Malloc(n int) (int, error) {
	if n < 0 || p.brk+n > p.scratch {
		return 0, ErrOutOfMemory
	}
	addr := p.brk
	p.brk += n
	return addr, nil
}

// Poke copies b into user memory at addr.
func (p *Proc) Poke(addr int, b []byte) error {
	_, err := p.m.KernelToUser(addr, b)
	return err
}

// Peek copies n bytes out of user memory at addr.
func (p *Proc) Peek(addr, n int) ([]byte, error) {
	return p.m.ReadBytes(addr, n)
}

// PeekString reads the NUL-terminated string at addr.
func (p *Proc) PeekString(addr, limit int) string {
	s, _ := p.m.UserToKernel(addr, limit)
	return s
}

// cstring stores s NUL-terminated in the scratch region and returns its
// address. s is cut to fit.
func (p *Proc) cstring(s string) int32 {
	if len(s) > ScratchSize-1 {
		s = s[:ScratchSize-1]
	}
	p.m.KernelToUser(p.scratch, append([]byte(s), 0))
	return int32(p.scratch)
}

// syscall loads the registers, traps into the kernel and returns the
// result register.
func (p *Proc) syscall(code userprog.Code, args ...int32) int32 {
	regs := []int{machine.Arg1Reg, machine.Arg2Reg, machine.Arg3Reg, machine.Arg4Reg}
	for i, a := range args {
		p.m.WriteRegister(regs[i], a)
	}
	p.m.WriteRegister(machine.ResultReg, int32(code))
	if err := p.m.RaiseException(machine.SyscallException, 0); err != nil {
		panic(err)
	}
	return p.m.ReadRegister(machine.ResultReg)
}

// Halt stops the kernel.
func (p *Proc) Halt() {
	p.syscall(userprog.CodeHalt)
}

// Exit terminates the process with status. It does not return.
func (p *Proc) Exit(status int) {
	p.syscall(userprog.CodeExit, int32(status))
}

// Exec starts the program name as a child and returns its id, or -1.
func (p *Proc) Exec(name string) int {
	return int(p.syscall(userprog.CodeExec, p.cstring(name)))
}

// Join waits for child id to exit and returns its exit code, or -1.
func (p *Proc) Join(id int) int {
	return int(p.syscall(userprog.CodeJoin, int32(id)))
}

// CreateFile creates an empty file. It returns 0 or -1.
func (p *Proc) CreateFile(name string) int {
	return int(p.syscall(userprog.CodeCreateFile, p.cstring(name)))
}

// Open opens name with mode and returns its id, or -1.
func (p *Proc) Open(name string, mode int) int {
	return int(p.syscall(userprog.CodeOpen, p.cstring(name), int32(mode)))
}

// Close closes id. It returns 0 or -1.
func (p *Proc) Close(id int) int {
	return int(p.syscall(userprog.CodeClose, int32(id)))
}

// Read reads up to size bytes from id into user memory at addr. It
// returns the byte count, -1 on error or -2 at end of file.
func (p *Proc) Read(addr, size, id int) int {
	return int(p.syscall(userprog.CodeRead, int32(addr), int32(size), int32(id)))
}

// Write writes up to size bytes from user memory at addr to id, stopping
// at a NUL. It returns the byte count or -1.
func (p *Proc) Write(addr, size, id int) int {
	return int(p.syscall(userprog.CodeWrite, int32(addr), int32(size), int32(id)))
}

// WriteString writes s to id through the scratch region.
func (p *Proc) WriteString(s string, id int) int {
	return int(p.syscall(userprog.CodeWrite, p.cstring(s), int32(len(s)), int32(id)))
}

// Seek moves the offset of id to pos, or to the end of file for -1.
func (p *Proc) Seek(pos, id int) int {
	return int(p.syscall(userprog.CodeSeek, int32(pos), int32(id)))
}

// ReadInt reads an integer line from the console.
func (p *Proc) ReadInt() int {
	return int(p.syscall(userprog.CodeReadInt))
}

// PrintInt prints n.
func (p *Proc) PrintInt(n int) {
	p.syscall(userprog.CodePrintInt, int32(n))
}

// ReadFloat reads a float line from the console.
func (p *Proc) ReadFloat() float32 {
	return math.Float32frombits(uint32(p.syscall(userprog.CodeReadFloat)))
}

// PrintFloat prints f rounded to two decimals.
func (p *Proc) PrintFloat(f float32) {
	p.syscall(userprog.CodePrintFloat, int32(math.Float32bits(f)))
}

// CompareFloat returns 1, -1 or 0.
func (p *Proc) CompareFloat(a, b float32) int {
	return int(p.syscall(userprog.CodeCompareFloat,
		int32(math.Float32bits(a)), int32(math.Float32bits(b))))
}

// FloatToString renders f into user memory at addr and returns its length.
func (p *Proc) FloatToString(f float32, addr int) int {
	return int(p.syscall(userprog.CodeFloatToString, int32(math.Float32bits(f)), int32(addr)))
}

// ReadChar reads one character from the console, or 0.
func (p *Proc) ReadChar() byte {
	return byte(p.syscall(userprog.CodeReadChar))
}

// PrintChar prints c unless it is 0.
func (p *Proc) PrintChar(c byte) {
	p.syscall(userprog.CodePrintChar, int32(c))
}

// ReadString reads a console line into user memory at addr, storing at
// most size-1 bytes and a NUL. It returns the bytes stored or -1.
func (p *Proc) ReadString(addr, size int) int {
	return int(p.syscall(userprog.CodeReadString, int32(addr), int32(size)))
}

// PrintString prints s.
func (p *Proc) PrintString(s string) {
	p.syscall(userprog.CodePrintString, p.cstring(s))
}

// CreateSemaphore registers a semaphore. It returns 0 or -1.
func (p *Proc) CreateSemaphore(name string, count int) int {
	return int(p.syscall(userprog.CodeCreateSemaphore, p.cstring(name), int32(count)))
}

// Down waits on a semaphore. It returns 0 or -1.
func (p *Proc) Down(name string) int {
	return int(p.syscall(userprog.CodeDown, p.cstring(name)))
}

// Up signals a semaphore. It returns 0 or -1.
func (p *Proc) Up(name string) int {
	return int(p.syscall(userprog.CodeUp, p.cstring(name)))
}
