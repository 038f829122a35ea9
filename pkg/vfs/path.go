package vfs

import (
	"errors"
	"strings"
)

// Name-related errors.
var (
	ErrEmptyName   = errors.New("vfs: empty file name")
	ErrInvalidName = errors.New("vfs: invalid file name")
	ErrNameTooLong = errors.New("vfs: file name too long")
)

// MaxNameLength is the maximum allowed file name length.
const MaxNameLength = 32

// Clean normalizes the path by removing unnecessary elements
// and handling relative paths. It is similar to filepath.Clean
// but operates on string paths without filesystem access.
func Clean(p string) string {
	if p == "" {
		return "/"
	}

	p = strings.ReplaceAll(p, "\\", "/")

	if p[0] != '/' {
		p = "/" + p
	}

	components := strings.Split(p, "/")
	var result []string

	for _, comp := range components {
		switch comp {
		case "", ".":
			continue
		case "..":
			// Go up one level, but not past root
			if len(result) > 0 {
				result = result[:len(result)-1]
			}
		default:
			result = append(result, comp)
		}
	}

	if len(result) == 0 {
		return "/"
	}

	return "/" + strings.Join(result, "/")
}

// ValidateName checks that name is usable as a flat file name.
func ValidateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}

	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}

	if strings.ContainsAny(name, "/\\\x00") || name == "." || name == ".." {
		return ErrInvalidName
	}

	return nil
}
