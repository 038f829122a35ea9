package vfs

import (
	"errors"
	"io"
	"sync"
)

// File errors.
var (
	ErrFileNotFound     = errors.New("vfs: file not found")
	ErrClosedFile       = errors.New("vfs: file is closed")
	ErrPermissionDenied = errors.New("vfs: permission denied")
	ErrInvalidSeek      = errors.New("vfs: invalid seek")
	ErrInvalidLength    = errors.New("vfs: invalid length")
)

// Mode is the access mode requested by Open.
type Mode int

const (
	// ModeReadWrite opens a file for reading and writing.
	ModeReadWrite Mode = iota
	// ModeReadOnly opens a file for reading only.
	ModeReadOnly
	// ModeConsoleInput selects the console input slot.
	ModeConsoleInput
	// ModeConsoleOutput selects the console output slot.
	ModeConsoleOutput
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeReadWrite:
		return "read-write"
	case ModeReadOnly:
		return "read-only"
	case ModeConsoleInput:
		return "console-input"
	case ModeConsoleOutput:
		return "console-output"
	default:
		return "unknown"
	}
}

// IsValid checks if the mode is one Open accepts.
func (m Mode) IsValid() bool {
	return m >= ModeReadWrite && m <= ModeConsoleOutput
}

// IsConsole reports whether the mode names a console slot.
func (m Mode) IsConsole() bool {
	return m == ModeConsoleInput || m == ModeConsoleOutput
}

// OpenFile is an entry of the open-file table.
type OpenFile struct {
	mu   sync.Mutex
	name string
	mode Mode
	file File
}

// Name returns the name the file was opened with.
func (f *OpenFile) Name() string {
	return f.name
}

// Mode returns the access mode of the entry.
func (f *OpenFile) Mode() Mode {
	return f.mode
}

// Read reads up to n bytes at the current offset. At end of file it
// returns nil, io.EOF.
func (f *OpenFile) Read(n int) ([]byte, error) {
	if f.file == nil {
		return nil, ErrPermissionDenied
	}
	if n < 0 {
		return nil, ErrInvalidLength
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if n == 0 {
		return []byte{}, nil
	}
	if left, err := f.remaining(); err == nil && left < int64(n) {
		if left <= 0 {
			return nil, io.EOF
		}
		n = int(left)
	}

	buf := make([]byte, n)
	got, err := io.ReadFull(f.file, buf)
	switch {
	case got > 0:
		return buf[:got], nil
	case err == nil || err == io.EOF || err == io.ErrUnexpectedEOF:
		return nil, io.EOF
	default:
		return nil, err
	}
}

// remaining returns the bytes between the offset and the end of the file.
func (f *OpenFile) remaining() (int64, error) {
	size, err := f.file.Size()
	if err != nil {
		return 0, err
	}
	off, err := f.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	return size - off, nil
}

// Write writes b at the current offset.
func (f *OpenFile) Write(b []byte) (int, error) {
	if f.file == nil || f.mode != ModeReadWrite {
		return 0, ErrPermissionDenied
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.Write(b)
}

// Seek moves the offset to pos. A pos of -1 moves it to the end of the
// file. Positions outside [0, size] are rejected.
func (f *OpenFile) Seek(pos int64) (int64, error) {
	if f.file == nil {
		return 0, ErrInvalidSeek
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	size, err := f.file.Size()
	if err != nil {
		return 0, err
	}
	if pos == -1 {
		pos = size
	}
	if pos < 0 || pos > size {
		return 0, ErrInvalidSeek
	}
	return f.file.Seek(pos, SEEK_SET)
}

func (f *OpenFile) close() error {
	if f.file == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.Close()
}
