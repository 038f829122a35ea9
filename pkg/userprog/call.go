package userprog

import (
	"fmt"

	"nachos/pkg/machine"
)

// Thread is the execution context a syscall runs on behalf of.
type Thread struct {
	// ID is the process table slot of the thread.
	ID int
	// Name is the program the thread runs.
	Name string
	// Machine is the CPU state and user memory of the thread.
	Machine *machine.Machine
}

// Call is one decoded syscall with its arguments.
type Call interface {
	// Code returns the syscall number.
	Code() Code
	handle(d *Dispatcher, t *Thread) (int32, error)
}

// Decode reads the syscall code and its arguments from the registers of m.
func Decode(m *machine.Machine) (Call, error) {
	code := Code(m.ReadRegister(machine.ResultReg))
	a1 := m.ReadRegister(machine.Arg1Reg)
	a2 := m.ReadRegister(machine.Arg2Reg)
	a3 := m.ReadRegister(machine.Arg3Reg)

	switch code {
	case CodeHalt:
		return haltCall{}, nil
	case CodeExit:
		return exitCall{status: a1}, nil
	case CodeExec:
		return execCall{nameAddr: a1}, nil
	case CodeJoin:
		return joinCall{id: a1}, nil
	case CodeCreateFile:
		return createFileCall{nameAddr: a1}, nil
	case CodeOpen:
		return openCall{nameAddr: a1, mode: a2}, nil
	case CodeRead:
		return readCall{addr: a1, size: a2, id: a3}, nil
	case CodeWrite:
		return writeCall{addr: a1, size: a2, id: a3}, nil
	case CodeClose:
		return closeCall{id: a1}, nil
	case CodeSeek:
		return seekCall{pos: a1, id: a2}, nil
	case CodeReadInt:
		return readIntCall{}, nil
	case CodePrintInt:
		return printIntCall{n: a1}, nil
	case CodeReadFloat:
		return readFloatCall{}, nil
	case CodePrintFloat:
		return printFloatCall{bits: a1}, nil
	case CodeReadChar:
		return readCharCall{}, nil
	case CodePrintChar:
		return printCharCall{c: a1}, nil
	case CodeReadString:
		return readStringCall{addr: a1, size: a2}, nil
	case CodePrintString:
		return printStringCall{addr: a1}, nil
	case CodeCompareFloat:
		return compareFloatCall{a: a1, b: a2}, nil
	case CodeFloatToString:
		return floatToStringCall{bits: a1, addr: a2}, nil
	case CodeCreateSemaphore:
		return createSemaphoreCall{nameAddr: a1, count: a2}, nil
	case CodeDown:
		return downCall{nameAddr: a1}, nil
	case CodeUp:
		return upCall{nameAddr: a1}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownSyscall, code)
	}
}
