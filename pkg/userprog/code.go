package userprog

// Code is the syscall number a user program places in the result register.
type Code int32

// Syscall codes.
const (
	// CodeHalt stops the kernel.
	CodeHalt Code = 0
	// CodeExit terminates the calling process with an exit code.
	CodeExit Code = 1
	// CodeExec starts a child process from a program name.
	CodeExec Code = 2
	// CodeJoin waits for a child to exit and returns its exit code.
	CodeJoin Code = 3
	// CodeCreateFile creates an empty file.
	CodeCreateFile Code = 4
	// CodeOpen opens a file or selects a console slot.
	CodeOpen Code = 5
	// CodeRead reads from an open file or the console.
	CodeRead Code = 6
	// CodeWrite writes to an open file or the console.
	CodeWrite Code = 7
	// CodeClose closes an open file.
	CodeClose Code = 8

	CodeReadInt       Code = 41
	CodePrintInt      Code = 42
	CodeReadFloat     Code = 43
	CodePrintFloat    Code = 44
	CodeReadChar      Code = 45
	CodePrintChar     Code = 46
	CodeReadString    Code = 47
	CodePrintString   Code = 48
	CodeCompareFloat  Code = 49
	CodeFloatToString Code = 51

	// CodeCreateSemaphore registers a named semaphore.
	CodeCreateSemaphore Code = 52
	// CodeDown waits on a named semaphore.
	CodeDown Code = 53
	// CodeUp signals a named semaphore.
	CodeUp Code = 54
	// CodeSeek moves the offset of an open file.
	CodeSeek Code = 55
)

// String returns the string representation of the code.
func (c Code) String() string {
	switch c {
	case CodeHalt:
		return "Halt"
	case CodeExit:
		return "Exit"
	case CodeExec:
		return "Exec"
	case CodeJoin:
		return "Join"
	case CodeCreateFile:
		return "CreateFile"
	case CodeOpen:
		return "Open"
	case CodeRead:
		return "Read"
	case CodeWrite:
		return "Write"
	case CodeClose:
		return "Close"
	case CodeReadInt:
		return "ReadInt"
	case CodePrintInt:
		return "PrintInt"
	case CodeReadFloat:
		return "ReadFloat"
	case CodePrintFloat:
		return "PrintFloat"
	case CodeReadChar:
		return "ReadChar"
	case CodePrintChar:
		return "PrintChar"
	case CodeReadString:
		return "ReadString"
	case CodePrintString:
		return "PrintString"
	case CodeCompareFloat:
		return "CompareFloat"
	case CodeFloatToString:
		return "FloatToString"
	case CodeCreateSemaphore:
		return "CreateSemaphore"
	case CodeDown:
		return "Down"
	case CodeUp:
		return "Up"
	case CodeSeek:
		return "Seek"
	default:
		return "Unknown"
	}
}

// IsValid checks if the code names an implemented syscall.
func (c Code) IsValid() bool {
	return c.String() != "Unknown"
}
