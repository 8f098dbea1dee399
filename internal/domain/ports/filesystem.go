package ports

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileSystem is the file access used by the deck services and adapters
type FileSystem interface {
	Open(name string) (File, error)
	Stat(name string) (os.FileInfo, error)
	Exists(path string) bool
	ReadFile(name string) ([]byte, error)

	// WriteFile replaces name atomically: readers see either the old
	// content or the new content, never a partial file
	WriteFile(name string, data []byte, perm os.FileMode) error

	CreateTemp(dir, pattern string) (File, error)
	Remove(name string) error

	Abs(path string) (string, error)
	// ExpandHome resolves a leading "~" to the user's home directory
	ExpandHome(path string) (string, error)
}

// File is an open file handle
type File interface {
	io.ReadWriteCloser
	Name() string
}

// RealFileSystem implements FileSystem on the os package
type RealFileSystem struct{}

// NewRealFileSystem returns the operating system file system
func NewRealFileSystem() FileSystem {
	return &RealFileSystem{}
}

func (fs *RealFileSystem) Open(name string) (File, error) {
	return os.Open(name) // #nosec G304 - deck, image and document paths come from the user
}

func (fs *RealFileSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

func (fs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (fs *RealFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name) // #nosec G304 - deck, image and document paths come from the user
}

// WriteFile writes to a sibling temporary file and renames it over name
func (fs *RealFileSystem) WriteFile(name string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), name)
}

func (fs *RealFileSystem) CreateTemp(dir, pattern string) (File, error) {
	return os.CreateTemp(dir, pattern)
}

// Remove deletes name; a file that is already gone is not an error
func (fs *RealFileSystem) Remove(name string) error {
	if err := os.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (fs *RealFileSystem) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

func (fs *RealFileSystem) ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[1:]), nil
}
