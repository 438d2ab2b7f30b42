package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Filesystem is the platform file capability the store and synchronizer
// are written against. It behaves the same whether backed by the real OS
// filesystem or the in-memory implementation used in tests, so business
// logic never branches on which backend is active.
type Filesystem interface {
	MkdirAll(path string) error
	Exists(path string) (bool, error)
	ReadFile(path string) ([]byte, error)
	// Open opens a file for streaming reads; serving large media goes
	// through it so files never have to be held in memory whole.
	Open(path string) (io.ReadCloser, error)
	WriteFile(path string, data []byte) error
	// Create opens a file for streaming writes; downloads go through it so
	// large media never has to be held in memory.
	Create(path string) (io.WriteCloser, error)
	ReadDir(path string) ([]string, error)
	Remove(path string) error
	// URI returns a platform-addressable reference to the file, which is
	// not necessarily a filesystem path.
	URI(path string) string
}

// OSFilesystem backs the capability with the real filesystem
type OSFilesystem struct{}

// NewOSFilesystem creates a new OSFilesystem
func NewOSFilesystem() *OSFilesystem {
	return &OSFilesystem{}
}

// Ensure OSFilesystem implements Filesystem
var _ Filesystem = (*OSFilesystem)(nil)

func (f *OSFilesystem) MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

func (f *OSFilesystem) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (f *OSFilesystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (f *OSFilesystem) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

func (f *OSFilesystem) WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}

func (f *OSFilesystem) Create(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

func (f *OSFilesystem) ReadDir(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

func (f *OSFilesystem) Remove(path string) error {
	return os.Remove(path)
}

func (f *OSFilesystem) URI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return fmt.Sprintf("file://%s", filepath.ToSlash(abs))
}
