package userprog

import (
	"context"
	"errors"

	"nachos/pkg/console"
	"nachos/pkg/machine"
	"nachos/pkg/process"
	"nachos/pkg/process/ipc"
	"nachos/pkg/synch"
	"nachos/pkg/vfs"
)

// Dispatcher errors.
var (
	ErrUnknownSyscall  = errors.New("unknown syscall")
	ErrNoProgram       = errors.New("no such program")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrWrongDirection  = errors.New("wrong direction for open file")
)

// Kind is the failure category of a syscall.
type Kind int

const (
	// KindNone means the call succeeded.
	KindNone Kind = iota
	// KindInvalidArgument covers bad ids, names, sizes and user addresses.
	KindInvalidArgument
	// KindResourceExhausted means a bounded table is full.
	KindResourceExhausted
	// KindDuplicateResource means the name is already registered.
	KindDuplicateResource
	// KindPermissionDenied means the caller may not perform the operation.
	KindPermissionDenied
	// KindNotFound means the named resource does not exist.
	KindNotFound
	// KindSelfReference means a process tried to execute itself.
	KindSelfReference
	// KindHalted means the kernel stopped while the call was blocked.
	KindHalted
	// KindInternal is anything else.
	KindInternal
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInvalidArgument:
		return "invalid-argument"
	case KindResourceExhausted:
		return "resource-exhausted"
	case KindDuplicateResource:
		return "duplicate-resource"
	case KindPermissionDenied:
		return "permission-denied"
	case KindNotFound:
		return "not-found"
	case KindSelfReference:
		return "self-reference"
	case KindHalted:
		return "halted"
	default:
		return "internal"
	}
}

// Classify maps an error returned by a kernel table to its Kind.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, synch.ErrHalted), errors.Is(err, context.Canceled):
		return KindHalted
	case errors.Is(err, process.ErrSelfExec):
		return KindSelfReference
	case errors.Is(err, process.ErrNoFreeSlot),
		errors.Is(err, ipc.ErrNoFreeSlot),
		errors.Is(err, vfs.ErrNoFreeSlot):
		return KindResourceExhausted
	case errors.Is(err, ipc.ErrSemaphoreExists):
		return KindDuplicateResource
	case errors.Is(err, process.ErrNotParent),
		errors.Is(err, vfs.ErrPermissionDenied),
		errors.Is(err, vfs.ErrConsoleSlot),
		errors.Is(err, ErrWrongDirection):
		return KindPermissionDenied
	case errors.Is(err, ipc.ErrSemaphoreNotFound),
		errors.Is(err, vfs.ErrFileNotFound),
		errors.Is(err, ErrNoProgram):
		return KindNotFound
	case machine.IsAddressError(err),
		errors.Is(err, ErrInvalidArgument),
		errors.Is(err, process.ErrInvalidPID),
		errors.Is(err, process.ErrInvalidName),
		errors.Is(err, ipc.ErrInvalidName),
		errors.Is(err, ipc.ErrInvalidCount),
		errors.Is(err, vfs.ErrBadDescriptor),
		errors.Is(err, vfs.ErrInvalidMode),
		errors.Is(err, vfs.ErrInvalidSeek),
		errors.Is(err, vfs.ErrInvalidLength),
		errors.Is(err, vfs.ErrEmptyName),
		errors.Is(err, vfs.ErrInvalidName),
		errors.Is(err, vfs.ErrNameTooLong),
		errors.Is(err, console.ErrSyntax),
		errors.Is(err, console.ErrRange):
		return KindInvalidArgument
	default:
		return KindInternal
	}
}
