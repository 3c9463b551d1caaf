// Package filesystem provides a virtualized abstraction layer for all filesystem operations.
//
// It utilizes the afero library to allow seamless switching between OS-level and in-memory filesystem backends.
package filesystem

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

var backend = afero.Afero{Fs: afero.NewOsFs()}

// API returns the active afero.Afero instance for filesystem interaction.
func API() afero.Afero {
	return backend
}

// SetOsFs restores the filesystem backend to the native operating system implementation.
func SetOsFs() {
	backend = afero.Afero{Fs: afero.NewOsFs()}
}

// SetMemMapFs initializes a volatile in-memory filesystem backend for unit testing and CI environments.
func SetMemMapFs() {
	backend = afero.Afero{Fs: afero.NewMemMapFs()}
}

// Append opens path for appending, creating the file and its parent directories as needed.
func Append(path string) (afero.File, error) {
	return openWithParents(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND)
}

// Truncate opens path for writing from scratch, creating the file and its parent directories as needed.
func Truncate(path string) (afero.File, error) {
	return openWithParents(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
}

func openWithParents(path string, flag int) (afero.File, error) {
	if err := API().MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, fmt.Errorf("create parent of %s: %w", path, err)
	}

	f, err := API().OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}
