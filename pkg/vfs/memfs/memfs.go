// Package memfs is a flat file system kept in memory. It is the default
// backing store of the kernel and loses its contents at shutdown.
package memfs

import (
	"io"
	"sort"
	"sync"
	"time"

	vfs "nachos/pkg/vfs"
)

// memNode holds the contents of one file.
type memNode struct {
	mu    sync.RWMutex
	data  []byte
	mtime time.Time
}

// FS maps file names to their contents.
type FS struct {
	mu    sync.RWMutex
	nodes map[string]*memNode
}

// New returns an empty file system.
func New() *FS {
	return &FS{nodes: make(map[string]*memNode)}
}

// NewWithFiles creates an in-memory filesystem holding files.
func NewWithFiles(files map[string][]byte) *FS {
	fs := New()
	for name, data := range files {
		fs.nodes[name] = &memNode{data: append([]byte(nil), data...), mtime: time.Now()}
	}
	return fs
}

// Create implements vfs.FileSystem.Create.
func (fs *FS) Create(name string) error {
	if err := vfs.ValidateName(name); err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if node, ok := fs.nodes[name]; ok {
		node.mu.Lock()
		node.data = nil
		node.mtime = time.Now()
		node.mu.Unlock()
		return nil
	}
	fs.nodes[name] = &memNode{mtime: time.Now()}
	return nil
}

// Open implements vfs.FileSystem.Open.
func (fs *FS) Open(name string, readOnly bool) (vfs.File, error) {
	fs.mu.RLock()
	node, ok := fs.nodes[name]
	fs.mu.RUnlock()

	if !ok {
		return nil, vfs.ErrFileNotFound
	}
	return &memFile{name: name, node: node, readOnly: readOnly}, nil
}

// Stat implements vfs.FileSystem.Stat.
func (fs *FS) Stat(name string) (vfs.FileInfo, error) {
	fs.mu.RLock()
	node, ok := fs.nodes[name]
	fs.mu.RUnlock()

	if !ok {
		return vfs.FileInfo{}, vfs.ErrFileNotFound
	}

	node.mu.RLock()
	defer node.mu.RUnlock()
	return vfs.FileInfo{Name: name, Size: int64(len(node.data)), ModTime: node.mtime}, nil
}

// Remove implements vfs.FileSystem.Remove.
func (fs *FS) Remove(name string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, ok := fs.nodes[name]; !ok {
		return vfs.ErrFileNotFound
	}
	delete(fs.nodes, name)
	return nil
}

// List implements vfs.FileSystem.List.
func (fs *FS) List() ([]string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	names := make([]string, 0, len(fs.nodes))
	for name := range fs.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// memFile is a file backed by a memNode.
type memFile struct {
	name     string
	node     *memNode
	readOnly bool
	offset   int64
	closed   bool
}

func (f *memFile) Read(b []byte) (int, error) {
	if f.closed {
		return 0, vfs.ErrClosedFile
	}

	f.node.mu.RLock()
	defer f.node.mu.RUnlock()

	if len(b) == 0 {
		return 0, nil
	}

	if f.offset >= int64(len(f.node.data)) {
		return 0, io.EOF
	}

	n := copy(b, f.node.data[f.offset:])
	f.offset += int64(n)
	return n, nil
}

func (f *memFile) Write(b []byte) (int, error) {
	if f.closed {
		return 0, vfs.ErrClosedFile
	}
	if f.readOnly {
		return 0, vfs.ErrPermissionDenied
	}

	f.node.mu.Lock()
	defer f.node.mu.Unlock()

	n := len(b)
	needed := f.offset + int64(n)

	if needed > int64(len(f.node.data)) {
		newData := make([]byte, needed)
		copy(newData, f.node.data)
		f.node.data = newData
	}

	copy(f.node.data[f.offset:], b)
	f.offset += int64(n)
	f.node.mtime = time.Now()
	return n, nil
}

func (f *memFile) Seek(offset int64, whence int) (int64, error) {
	if f.closed {
		return 0, vfs.ErrClosedFile
	}

	f.node.mu.RLock()
	size := int64(len(f.node.data))
	f.node.mu.RUnlock()

	var newOffset int64
	switch whence {
	case vfs.SEEK_SET:
		newOffset = offset
	case vfs.SEEK_CUR:
		newOffset = f.offset + offset
	case vfs.SEEK_END:
		newOffset = size + offset
	default:
		return 0, vfs.ErrInvalidSeek
	}

	if newOffset < 0 {
		return 0, vfs.ErrInvalidSeek
	}

	f.offset = newOffset
	return f.offset, nil
}

func (f *memFile) Close() error {
	f.closed = true
	return nil
}

func (f *memFile) Size() (int64, error) {
	f.node.mu.RLock()
	defer f.node.mu.RUnlock()
	return int64(len(f.node.data)), nil
}
