package anchors

import (
	"fmt"
	"io"
	"io/fs"
	"os"
)

// FileSystem abstracts the file operations used during trust anchor discovery.
type FileSystem interface {
	Open(path string) (io.ReadCloser, error)
	ReadFile(path string) ([]byte, error)
	FileExists(path string) (bool, error)
	ListDirectory(path string) ([]string, error)
	WriteFile(path string, content []byte, permissions fs.FileMode) error
	EnsureDirectory(path string, permissions fs.FileMode) error
}

// OperatingSystemFileSystem implements FileSystem using the local operating system.
type OperatingSystemFileSystem struct{}

// NewOperatingSystemFileSystem constructs an OperatingSystemFileSystem.
func NewOperatingSystemFileSystem() OperatingSystemFileSystem {
	return OperatingSystemFileSystem{}
}

// Open opens the file at path for reading.
func (OperatingSystemFileSystem) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// ReadFile returns the full content of the file at path.
func (OperatingSystemFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// FileExists reports whether a regular file exists at path.
func (OperatingSystemFileSystem) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return !info.IsDir(), nil
}

// ListDirectory returns the names of the entries in the directory at path.
func (OperatingSystemFileSystem) ListDirectory(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", path, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}

// WriteFile writes content to path with the provided permissions.
func (OperatingSystemFileSystem) WriteFile(path string, content []byte, permissions fs.FileMode) error {
	return os.WriteFile(path, content, permissions)
}

// EnsureDirectory creates the directory at path when it does not exist.
func (OperatingSystemFileSystem) EnsureDirectory(path string, permissions fs.FileMode) error {
	return os.MkdirAll(path, permissions)
}
