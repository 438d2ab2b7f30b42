package fs

import (
	"bytes"
	"fmt"
	"io"
	iofs "io/fs"
	"path"
	"sort"
	"strings"
	"sync"
)

// MemFilesystem is an in-memory Filesystem used when no real filesystem is
// available (tests, browser-style simulations). Paths are normalized with
// forward slashes.
type MemFilesystem struct {
	mu    sync.Mutex
	files map[string][]byte
	dirs  map[string]bool

	// FailWrites simulates a storage permission denial
	FailWrites bool
}

// NewMemFilesystem creates an empty MemFilesystem
func NewMemFilesystem() *MemFilesystem {
	return &MemFilesystem{
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
	}
}

// Ensure MemFilesystem implements Filesystem
var _ Filesystem = (*MemFilesystem)(nil)

func normalize(p string) string {
	return path.Clean(strings.ReplaceAll(p, "\\", "/"))
}

func (f *MemFilesystem) MkdirAll(p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWrites {
		return fmt.Errorf("mkdir %s: %w", p, iofs.ErrPermission)
	}
	p = normalize(p)
	for p != "." && p != "/" {
		f.dirs[p] = true
		p = path.Dir(p)
	}
	return nil
}

func (f *MemFilesystem) Exists(p string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p = normalize(p)
	if _, ok := f.files[p]; ok {
		return true, nil
	}
	return f.dirs[p], nil
}

func (f *MemFilesystem) ReadFile(p string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p = normalize(p)
	data, ok := f.files[p]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", p, iofs.ErrNotExist)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (f *MemFilesystem) Open(p string) (io.ReadCloser, error) {
	data, err := f.ReadFile(p)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *MemFilesystem) WriteFile(p string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailWrites {
		return fmt.Errorf("write %s: %w", p, iofs.ErrPermission)
	}
	p = normalize(p)
	stored := make([]byte, len(data))
	copy(stored, data)
	f.files[p] = stored
	return nil
}

// memWriter buffers stream writes and commits on Close
type memWriter struct {
	fs   *MemFilesystem
	path string
	buf  bytes.Buffer
}

func (w *memWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *memWriter) Close() error {
	return w.fs.WriteFile(w.path, w.buf.Bytes())
}

func (f *MemFilesystem) Create(p string) (io.WriteCloser, error) {
	f.mu.Lock()
	failWrites := f.FailWrites
	f.mu.Unlock()
	if failWrites {
		return nil, fmt.Errorf("create %s: %w", p, iofs.ErrPermission)
	}
	return &memWriter{fs: f, path: normalize(p)}, nil
}

func (f *MemFilesystem) ReadDir(p string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p = normalize(p)
	var names []string
	for file := range f.files {
		if path.Dir(file) == p {
			names = append(names, path.Base(file))
		}
	}
	sort.Strings(names)
	return names, nil
}

func (f *MemFilesystem) Remove(p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p = normalize(p)
	if _, ok := f.files[p]; !ok {
		return fmt.Errorf("remove %s: %w", p, iofs.ErrNotExist)
	}
	delete(f.files, p)
	return nil
}

func (f *MemFilesystem) URI(p string) string {
	return fmt.Sprintf("mem://%s", normalize(p))
}
