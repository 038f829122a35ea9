package vfs

import (
	"io"
	"time"
)

// FileSystem is the flat file store behind the file syscalls. Names have
// no directory structure.
//
// Implementations include MemFS (in-memory) and DiskFS (a host directory).
type FileSystem interface {
	// Create creates an empty file, truncating it if it already exists.
	Create(name string) error

	// Open opens an existing file. A read-only file rejects writes.
	Open(name string, readOnly bool) (File, error)

	// Stat returns a FileInfo describing the named file.
	Stat(name string) (FileInfo, error)

	// Remove deletes the named file.
	Remove(name string) error

	// List returns the names of all files in sorted order.
	List() ([]string, error)
}

// File represents an open file.
type File interface {
	// Read reads up to len(b) bytes at the current offset. At end of file
	// it returns 0, io.EOF.
	io.Reader

	// Write writes b at the current offset, growing the file as needed.
	io.Writer

	// Seek sets the offset for the next Read or Write.
	// offset is interpreted relative to whence (0=start, 1=current, 2=end).
	io.Seeker

	io.Closer

	// Size returns the current length of the file.
	Size() (int64, error)
}

// FileInfo describes a file and is returned by Stat.
type FileInfo struct {
	Name    string    // Base name of the file
	Size    int64     // Length in bytes
	ModTime time.Time // Modification time
}

// SeekWhence constants for Seek operations.
const (
	SEEK_SET = io.SeekStart   // Relative to start of file.
	SEEK_CUR = io.SeekCurrent // Relative to current position.
	SEEK_END = io.SeekEnd     // Relative to end of file.
)
