package vfs

import (
	"errors"
	"sync"

	"github.com/hashicorp/go-hclog"

	"nachos/pkg/bitmap"
)

// MaxOpenFiles is the default open-file table capacity, console slots
// included.
const MaxOpenFiles = 15

// Console slot ids.
const (
	ConsoleInput  = 0
	ConsoleOutput = 1
)

// Open-file table errors.
var (
	ErrNoFreeSlot    = errors.New("vfs: no free open-file slot")
	ErrBadDescriptor = errors.New("vfs: bad open-file id")
	ErrConsoleSlot   = errors.New("vfs: console slot cannot be closed")
	ErrInvalidMode   = errors.New("vfs: invalid open mode")
	ErrTableTooSmall = errors.New("vfs: open-file table needs room for the console")
)

// FileTable maps open-file ids to open files. It is shared by every
// process of the kernel.
type FileTable struct {
	fs      FileSystem
	bm      *bitmap.Bitmap
	entries []*OpenFile
	mu      sync.Mutex
	logger  hclog.Logger
}

// NewFileTable creates a table with size slots over fs. Slots 0 and 1 are
// bound to the console.
func NewFileTable(fs FileSystem, size int, logger hclog.Logger) (*FileTable, error) {
	if size < 2 {
		return nil, ErrTableTooSmall
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	ft := &FileTable{
		fs:      fs,
		bm:      bitmap.New(size),
		entries: make([]*OpenFile, size),
		logger:  logger,
	}
	ft.bind(ConsoleInput, &OpenFile{name: "stdin", mode: ModeConsoleInput})
	ft.bind(ConsoleOutput, &OpenFile{name: "stdout", mode: ModeConsoleOutput})
	return ft, nil
}

func (ft *FileTable) bind(id int, f *OpenFile) {
	ft.bm.Mark(id)
	ft.entries[id] = f
}

// FileSystem returns the backing file system.
func (ft *FileTable) FileSystem() FileSystem {
	return ft.fs
}

// Create creates an empty file called name, truncating an existing one.
func (ft *FileTable) Create(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := ft.fs.Create(name); err != nil {
		ft.logger.Warn("cannot create file", "name", name, "err", err)
		return err
	}
	ft.logger.Debug("file created", "name", name)
	return nil
}

// Open opens name with mode and returns its id. The console modes return
// the console slots without allocating.
func (ft *FileTable) Open(name string, mode Mode) (int, error) {
	switch mode {
	case ModeConsoleInput:
		return ConsoleInput, nil
	case ModeConsoleOutput:
		return ConsoleOutput, nil
	case ModeReadWrite, ModeReadOnly:
	default:
		return -1, ErrInvalidMode
	}

	if err := ValidateName(name); err != nil {
		return -1, err
	}

	ft.mu.Lock()
	defer ft.mu.Unlock()

	id, ok := ft.bm.FindFree()
	if !ok {
		ft.logger.Warn("cannot open file, no free slot", "name", name)
		return -1, ErrNoFreeSlot
	}

	file, err := ft.fs.Open(name, mode == ModeReadOnly)
	if err != nil {
		ft.logger.Warn("cannot open file", "name", name, "err", err)
		return -1, err
	}

	ft.bind(id, &OpenFile{name: name, mode: mode, file: file})
	ft.logger.Debug("file opened", "name", name, "id", id, "mode", mode)
	return id, nil
}

// Get returns the entry for id.
func (ft *FileTable) Get(id int) (*OpenFile, error) {
	ft.mu.Lock()
	defer ft.mu.Unlock()

	if id < 0 || id >= len(ft.entries) || ft.entries[id] == nil {
		return nil, ErrBadDescriptor
	}
	return ft.entries[id], nil
}

// Close closes id and frees its slot.
func (ft *FileTable) Close(id int) error {
	if id == ConsoleInput || id == ConsoleOutput {
		return ErrConsoleSlot
	}

	ft.mu.Lock()
	if id < 0 || id >= len(ft.entries) || ft.entries[id] == nil {
		ft.mu.Unlock()
		return ErrBadDescriptor
	}
	f := ft.entries[id]
	ft.entries[id] = nil
	ft.bm.Clear(id)
	ft.mu.Unlock()

	ft.logger.Debug("file closed", "name", f.name, "id", id)
	return f.close()
}

// Count returns the number of occupied slots, console included.
func (ft *FileTable) Count() int {
	return ft.bm.Size() - ft.bm.NumClear()
}

// Teardown closes every open file. The console slots stay bound.
func (ft *FileTable) Teardown() {
	ft.mu.Lock()
	var open []*OpenFile
	for id, f := range ft.entries {
		if f != nil && !f.mode.IsConsole() {
			open = append(open, f)
			ft.entries[id] = nil
			ft.bm.Clear(id)
		}
	}
	ft.mu.Unlock()

	for _, f := range open {
		if err := f.close(); err != nil {
			ft.logger.Warn("error closing file at teardown", "name", f.name, "err", err)
		}
	}
}
