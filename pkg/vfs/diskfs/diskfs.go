// Package diskfs backs the kernel file system with one host directory.
// Each kernel file is a regular file in that directory.
package diskfs

import (
	"errors"
	"os"
	"path/filepath"
	"sort"

	vfs "nachos/pkg/vfs"
)

// FS is a file system stored under a host directory.
type FS struct {
	root string
}

// New returns a file system stored under root.
func New(root string) *FS {
	return &FS{root: filepath.Clean(root)}
}

// Root returns the host directory backing the filesystem.
func (fs *FS) Root() string {
	return fs.root
}

// Create implements vfs.FileSystem.Create.
func (fs *FS) Create(name string) error {
	if err := vfs.ValidateName(name); err != nil {
		return err
	}
	f, err := os.OpenFile(fs.fullPath(name), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return err
	}
	return f.Close()
}

// Open implements vfs.FileSystem.Open.
func (fs *FS) Open(name string, readOnly bool) (vfs.File, error) {
	flags := os.O_RDWR
	if readOnly {
		flags = os.O_RDONLY
	}
	file, err := os.OpenFile(fs.fullPath(name), flags, 0)
	if err != nil {
		return nil, mapError(err)
	}
	return &diskFile{file: file, readOnly: readOnly}, nil
}

// Stat implements vfs.FileSystem.Stat.
func (fs *FS) Stat(name string) (vfs.FileInfo, error) {
	info, err := os.Stat(fs.fullPath(name))
	if err != nil {
		return vfs.FileInfo{}, mapError(err)
	}
	return fileInfoFromOS(info), nil
}

// Remove implements vfs.FileSystem.Remove.
func (fs *FS) Remove(name string) error {
	return mapError(os.Remove(fs.fullPath(name)))
}

// List implements vfs.FileSystem.List.
func (fs *FS) List() ([]string, error) {
	entries, err := os.ReadDir(fs.root)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// fullPath converts a file name to a host path inside the root.
func (fs *FS) fullPath(name string) string {
	cleanPath := vfs.Clean(name)
	if cleanPath == "/" {
		return fs.root
	}
	// Remove leading slash for filepath.Join
	return filepath.Join(fs.root, cleanPath[1:])
}

// mapError translates host errors to vfs errors.
func mapError(err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return vfs.ErrFileNotFound
	}
	return err
}

// fileInfoFromOS converts an os.FileInfo to a vfs.FileInfo.
func fileInfoFromOS(info os.FileInfo) vfs.FileInfo {
	return vfs.FileInfo{
		Name:    info.Name(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
}

// diskFile wraps an os.File to implement vfs.File.
type diskFile struct {
	file     *os.File
	readOnly bool
}

func (f *diskFile) Read(b []byte) (int, error) {
	return f.file.Read(b)
}

func (f *diskFile) Write(b []byte) (int, error) {
	if f.readOnly {
		return 0, vfs.ErrPermissionDenied
	}
	return f.file.Write(b)
}

func (f *diskFile) Seek(offset int64, whence int) (int64, error) {
	return f.file.Seek(offset, whence)
}

func (f *diskFile) Close() error {
	return f.file.Close()
}

func (f *diskFile) Size() (int64, error) {
	info, err := f.file.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
