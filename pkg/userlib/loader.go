package userlib

import (
	"errors"
	"sort"
	"sync"
)

// Program is the entry point of a user program. Its return value is the
// exit code.
type Program func(p *Proc) int

// Loader errors.
var (
	ErrProgramExists = errors.New("program already registered")
	ErrEmptyName     = errors.New("empty program name")
)

// Loader maps executable names to programs.
type Loader struct {
	mu       sync.RWMutex
	programs map[string]Program
}

// NewLoader creates an empty loader.
func NewLoader() *Loader {
	return &Loader{programs: make(map[string]Program)}
}

// Register adds prog under name.
func (l *Loader) Register(name string, prog Program) error {
	if name == "" {
		return ErrEmptyName
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.programs[name]; ok {
		return ErrProgramExists
	}
	l.programs[name] = prog
	return nil
}

// Lookup returns the program registered under name.
func (l *Loader) Lookup(name string) (Program, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	prog, ok := l.programs[name]
	return prog, ok
}

// Exists reports whether name is registered.
func (l *Loader) Exists(name string) bool {
	_, ok := l.Lookup(name)
	return ok
}

// Names returns the registered names in sorted order.
func (l *Loader) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	names := make([]string, 0, len(l.programs))
	for name := range l.programs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
