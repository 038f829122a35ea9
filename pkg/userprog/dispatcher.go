package userprog

import (
	"context"
	"runtime"

	"github.com/hashicorp/go-hclog"

	"nachos/pkg/console"
	"nachos/pkg/machine"
	"nachos/pkg/process"
	"nachos/pkg/process/ipc"
	"nachos/pkg/vfs"
)

// Resolver reports whether a program can be executed.
type Resolver interface {
	Exists(name string) bool
}

// Services are the kernel tables the dispatcher operates on.
type Services struct {
	Processes  *process.Table
	Semaphores *ipc.SemaphoreTable
	Files      *vfs.FileTable
	Console    *console.Console
	Programs   Resolver
	// Halt stops the kernel. It must not block.
	Halt func()
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the dispatcher logger.
func WithLogger(logger hclog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithTerminator replaces how the calling thread is ended after Exit, Halt
// or a fatal exception. The default ends the calling goroutine.
func WithTerminator(fn func(t *Thread)) Option {
	return func(d *Dispatcher) {
		d.terminate = fn
	}
}

// Dispatcher is the kernel's exception entry point. It decodes syscalls
// from the registers of the calling thread, runs them against the kernel
// tables and writes the result back.
type Dispatcher struct {
	ctx       context.Context
	procs     *process.Table
	sems      *ipc.SemaphoreTable
	files     *vfs.FileTable
	console   *console.Console
	programs  Resolver
	halt      func()
	terminate func(t *Thread)
	logger    hclog.Logger
}

// NewDispatcher creates a dispatcher. Blocking syscalls are released when
// ctx is cancelled.
func NewDispatcher(ctx context.Context, s Services, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		ctx:       ctx,
		procs:     s.Processes,
		sems:      s.Semaphores,
		files:     s.Files,
		console:   s.Console,
		programs:  s.Programs,
		halt:      s.Halt,
		terminate: func(*Thread) { runtime.Goexit() },
		logger:    hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.halt == nil {
		d.halt = func() {}
	}
	return d
}

// HandleException services an exception raised by thread t.
func (d *Dispatcher) HandleException(t *Thread, which machine.ExceptionType) {
	switch which {
	case machine.NoException:
		return
	case machine.SyscallException:
		d.syscall(t)
	default:
		d.logger.Error("unexpected user mode exception",
			"pid", t.ID, "name", t.Name,
			"exception", which.String(), "reason", which.Describe(),
			"badvaddr", t.Machine.ReadRegister(machine.BadVAddrReg))
		d.halt()
		d.terminate(t)
	}
}

func (d *Dispatcher) syscall(t *Thread) {
	m := t.Machine
	defer m.AdvancePC()

	call, err := Decode(m)
	if err != nil {
		d.logger.Error("unexpected syscall, halting", "pid", t.ID, "err", err)
		d.halt()
		d.terminate(t)
		return
	}

	// A halted kernel accepts no more calls.
	if d.ctx.Err() != nil {
		d.logger.Debug("syscall after halt", "pid", t.ID, "call", call.Code().String())
		d.terminate(t)
		return
	}

	d.logger.Trace("syscall", "pid", t.ID, "call", call.Code().String())

	result, err := call.handle(d, t)
	if err != nil {
		kind := Classify(err)
		if kind == KindHalted {
			d.logger.Debug("syscall interrupted by halt", "pid", t.ID, "call", call.Code().String())
			d.terminate(t)
			return
		}
		d.logger.Debug("syscall failed",
			"pid", t.ID, "call", call.Code().String(), "kind", kind.String(), "err", err)
	}

	m.WriteRegister(machine.ResultReg, result)
}
