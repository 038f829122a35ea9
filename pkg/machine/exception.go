package machine

// ExceptionType identifies why control entered the kernel.
type ExceptionType int

const (
	// NoException means everything is fine.
	NoException ExceptionType = iota
	// SyscallException is a program executed a syscall instruction.
	SyscallException
	// PageFaultException means no valid translation was found.
	PageFaultException
	// ReadOnlyException means a write to a read-only page.
	ReadOnlyException
	// BusErrorException means a translation resulted in an invalid physical address.
	BusErrorException
	// AddressErrorException means an unaligned reference or one beyond the address space.
	AddressErrorException
	// OverflowException means an integer overflow in add or sub.
	OverflowException
	// IllegalInstrException means an unimplemented or reserved instruction.
	IllegalInstrException
)

// String returns the string representation of the exception type.
func (e ExceptionType) String() string {
	switch e {
	case NoException:
		return "NoException"
	case SyscallException:
		return "SyscallException"
	case PageFaultException:
		return "PageFaultException"
	case ReadOnlyException:
		return "ReadOnlyException"
	case BusErrorException:
		return "BusErrorException"
	case AddressErrorException:
		return "AddressErrorException"
	case OverflowException:
		return "OverflowException"
	case IllegalInstrException:
		return "IllegalInstrException"
	default:
		return "UnknownException"
	}
}

// Describe returns the diagnostic printed when the exception halts the kernel.
func (e ExceptionType) Describe() string {
	switch e {
	case PageFaultException:
		return "no valid translation found"
	case ReadOnlyException:
		return "write attempted to page marked read-only"
	case BusErrorException:
		return "translation resulted in an invalid physical address"
	case AddressErrorException:
		return "unaligned reference or one that was beyond the end of the address space"
	case OverflowException:
		return "integer overflow in add or sub"
	case IllegalInstrException:
		return "unimplemented or reserved instruction"
	default:
		return "unexpected user mode exception"
	}
}

// IsFatal reports whether the exception halts the kernel.
func (e ExceptionType) IsFatal() bool {
	return e != NoException && e != SyscallException
}
