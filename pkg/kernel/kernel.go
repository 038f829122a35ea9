// Package kernel assembles the process table, semaphore registry, open file
// table, console and syscall dispatcher into a bootable kernel, and runs
// every user process on its own goroutine.
package kernel

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"nachos/pkg/console"
	"nachos/pkg/machine"
	"nachos/pkg/process"
	"nachos/pkg/process/ipc"
	"nachos/pkg/programs"
	"nachos/pkg/synch"
	"nachos/pkg/userlib"
	"nachos/pkg/userprog"
	"nachos/pkg/vfs"
	"nachos/pkg/vfs/diskfs"
	"nachos/pkg/vfs/memfs"
)

// Kernel errors.
var (
	ErrAlreadyBooted = errors.New("kernel already booted")
	ErrNotDirectory  = errors.New("file system root is not a directory")
)

// Option configures a Kernel.
type Option func(*Kernel)

// WithLogger sets the root logger. Table loggers are named below it.
func WithLogger(logger hclog.Logger) Option {
	return func(k *Kernel) {
		k.logger = logger
	}
}

// WithConsole sets the console shared by all processes.
func WithConsole(c *console.Console) Option {
	return func(k *Kernel) {
		k.console = c
	}
}

// WithFileSystem sets the file system behind the open file table.
func WithFileSystem(fs vfs.FileSystem) Option {
	return func(k *Kernel) {
		k.fs = fs
	}
}

// WithLoader sets the programs the kernel can execute.
func WithLoader(l *userlib.Loader) Option {
	return func(k *Kernel) {
		k.programs = l
	}
}

// Kernel is a booted or bootable instance of the operating system.
type Kernel struct {
	cfg    Config
	logger hclog.Logger

	// ctx is cancelled with synch.ErrHalted when the kernel halts.
	ctx    context.Context
	cancel context.CancelCauseFunc
	// group runs one goroutine per user process.
	group errgroup.Group

	procs      *process.Table
	sems       *ipc.SemaphoreTable
	files      *vfs.FileTable
	fs         vfs.FileSystem
	console    *console.Console
	ownConsole bool
	programs   *userlib.Loader
	dispatcher *userprog.Dispatcher

	booted   atomic.Bool
	haltOnce sync.Once
}

// New creates a kernel from cfg. Nothing runs until Boot.
func New(cfg Config, opts ...Option) (*Kernel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	k := &Kernel{cfg: cfg}
	for _, opt := range opts {
		opt(k)
	}

	if k.logger == nil {
		k.logger = hclog.New(&hclog.LoggerOptions{
			Name:  "nachos",
			Level: hclog.LevelFromString(cfg.LogLevel),
		})
	}
	if k.programs == nil {
		k.programs = programs.Default()
	}
	if k.fs == nil {
		fs, err := newFileSystem(cfg.FilesystemRoot)
		if err != nil {
			return nil, err
		}
		k.fs = fs
	}
	if k.console == nil {
		if cfg.ConsoleTTY {
			c, err := console.OpenTTY()
			if err != nil {
				return nil, fmt.Errorf("failed to open tty: %w", err)
			}
			k.console = c
		} else {
			k.console = console.New(os.Stdin, os.Stdout)
		}
		k.ownConsole = true
	}

	k.ctx, k.cancel = context.WithCancelCause(context.Background())

	procs, err := process.NewTable(cfg.MaxProcess, cfg.RootProgram,
		process.WithLogger(k.logger.Named("ptable")),
		process.WithLauncher(k.launch),
		process.WithHalter(k.Halt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create process table: %w", err)
	}
	k.procs = procs

	k.sems = ipc.NewSemaphoreTable(cfg.MaxSemaphore, k.logger.Named("stable"))

	files, err := vfs.NewFileTable(k.fs, cfg.MaxOpenFiles, k.logger.Named("filesys"))
	if err != nil {
		return nil, fmt.Errorf("failed to create file table: %w", err)
	}
	k.files = files

	k.dispatcher = userprog.NewDispatcher(k.ctx, userprog.Services{
		Processes:  k.procs,
		Semaphores: k.sems,
		Files:      k.files,
		Console:    k.console,
		Programs:   k.programs,
		Halt:       k.Halt,
	}, userprog.WithLogger(k.logger.Named("syscall")))

	return k, nil
}

func newFileSystem(root string) (vfs.FileSystem, error) {
	if root == "" {
		return memfs.New(), nil
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("file system root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}
	return diskfs.New(root), nil
}

// Boot starts the root program in slot 0. Cancelling ctx halts the kernel.
func (k *Kernel) Boot(ctx context.Context) error {
	if !k.booted.CompareAndSwap(false, true) {
		return ErrAlreadyBooted
	}

	root, err := k.procs.Get(process.RootID)
	if err != nil {
		return err
	}
	if err := k.launch(root); err != nil {
		return fmt.Errorf("failed to boot %s: %w", root.Name(), err)
	}

	stop := context.AfterFunc(ctx, k.Halt)
	context.AfterFunc(k.ctx, func() { stop() })

	k.logger.Info("kernel booted", "root", root.Name(),
		"max_process", k.cfg.MaxProcess, "max_semaphore", k.cfg.MaxSemaphore)
	return nil
}

// Run boots the kernel and blocks until it halts.
func (k *Kernel) Run(ctx context.Context) error {
	if err := k.Boot(ctx); err != nil {
		return err
	}
	<-k.ctx.Done()
	return nil
}

// Halt stops the kernel. Every blocked semaphore, join and exit wait is
// released, then the process, semaphore and open file tables are torn
// down. Calling Halt more than once has no effect.
func (k *Kernel) Halt() {
	k.haltOnce.Do(func() {
		k.logger.Info("machine halting")
		k.cancel(synch.ErrHalted)
		k.procs.Teardown()
		k.sems.Teardown()
		k.files.Teardown()
	})
}

// Wait blocks until every process goroutine has returned.
func (k *Kernel) Wait() error {
	return k.group.Wait()
}

// Close releases the console if the kernel opened it.
func (k *Kernel) Close() error {
	if k.ownConsole {
		return k.console.Close()
	}
	return nil
}

// Done is closed when the kernel halts.
func (k *Kernel) Done() <-chan struct{} {
	return k.ctx.Done()
}

// Halted reports whether the kernel has halted.
func (k *Kernel) Halted() bool {
	return k.ctx.Err() != nil
}

// Config returns the kernel configuration.
func (k *Kernel) Config() Config {
	return k.cfg
}

// Processes returns the process table.
func (k *Kernel) Processes() *process.Table {
	return k.procs
}

// Semaphores returns the semaphore registry.
func (k *Kernel) Semaphores() *ipc.SemaphoreTable {
	return k.sems
}

// Files returns the open file table.
func (k *Kernel) Files() *vfs.FileTable {
	return k.files
}

// Programs returns the program loader.
func (k *Kernel) Programs() *userlib.Loader {
	return k.programs
}

// launch starts the goroutine of p. It runs under the process table's exec
// lock and does not block.
func (k *Kernel) launch(p *process.PCB) error {
	if k.ctx.Err() != nil {
		return context.Cause(k.ctx)
	}
	prog, ok := k.programs.Lookup(p.Name())
	if !ok {
		return fmt.Errorf("%w: %s", userprog.ErrNoProgram, p.Name())
	}

	k.group.Go(func() error {
		k.run(p, prog)
		return nil
	})
	return nil
}

// run executes prog as process p on a fresh machine. A program that returns
// is exited with its return value; one that panics raises an illegal
// instruction exception.
func (k *Kernel) run(p *process.PCB, prog userlib.Program) {
	m := machine.New(k.cfg.MemorySize)
	t := &userprog.Thread{ID: p.ID, Name: p.Name(), Machine: m}
	m.SetHandler(func(_ *machine.Machine, which machine.ExceptionType) {
		k.dispatcher.HandleException(t, which)
	})

	defer func() {
		if r := recover(); r != nil {
			k.logger.Error("process crashed", "pid", t.ID, "name", t.Name, "panic", r)
			m.RaiseException(machine.IllegalInstrException, 0)
		}
	}()

	k.logger.Debug("process started", "pid", t.ID, "name", t.Name)
	proc := userlib.NewProc(m)
	proc.Exit(prog(proc))
}
