package service

import (
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"log"
	"path"
	"sync"

	"flipbook-cache/fs"
	"flipbook-cache/models"
)

const (
	catalogFileName = "catalog.json"
	viewerFileName  = "viewer.html"
)

// StoreService is the durable key/file store for the catalog snapshot, the
// viewer HTML and downloaded media, laid out under a single root folder.
// It also carries the in-memory "already processed this session" set used
// by the synchronizer for download dedup.
// Implements StoreServiceInterface
type StoreService struct {
	filesystem fs.Filesystem
	root       string

	mu        sync.Mutex
	processed map[string]bool
}

// NewStoreService creates a new StoreService rooted at the given folder
func NewStoreService(filesystem fs.Filesystem, root string) *StoreService {
	return &StoreService{
		filesystem: filesystem,
		root:       root,
		processed:  make(map[string]bool),
	}
}

// Ensure StoreService implements StoreServiceInterface
var _ StoreServiceInterface = (*StoreService)(nil)

// layoutFolders is the fixed folder layout under the store root
var layoutFolders = []models.Folder{models.FolderHTML, models.FolderJSON, models.FolderImages, models.FolderVideos}

// EnsureLayout idempotently creates the root folder and subfolders.
// Existing folders are fine; a creation failure is surfaced as a
// PermissionError so the caller can decide between fatal (first run) and
// cache-only degradation.
func (s *StoreService) EnsureLayout() error {
	for _, folder := range layoutFolders {
		dir := path.Join(s.root, string(folder))
		if err := s.filesystem.MkdirAll(dir); err != nil {
			return &PermissionError{Path: dir, Err: err}
		}
	}
	return nil
}

// WriteCatalog persists the catalog snapshot (single slot, not versioned)
func (s *StoreService) WriteCatalog(data []byte) error {
	filePath := s.path(models.FolderJSON, catalogFileName)
	if err := s.filesystem.WriteFile(filePath, data); err != nil {
		return fmt.Errorf("failed to write catalog snapshot: %w", err)
	}
	log.Printf("💾 Catalog snapshot written: %s", s.filesystem.URI(filePath))
	return nil
}

// ReadCatalog returns the persisted snapshot or ErrNotFound on first run
func (s *StoreService) ReadCatalog() ([]byte, error) {
	data, err := s.filesystem.ReadFile(s.path(models.FolderJSON, catalogFileName))
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read catalog snapshot: %w", err)
	}
	return data, nil
}

// WriteViewerHTML caches the viewer document
func (s *StoreService) WriteViewerHTML(data []byte) error {
	filePath := s.path(models.FolderHTML, viewerFileName)
	if err := s.filesystem.WriteFile(filePath, data); err != nil {
		return fmt.Errorf("failed to write viewer html: %w", err)
	}
	log.Printf("💾 Viewer HTML written: %s", s.filesystem.URI(filePath))
	return nil
}

// ReadViewerHTML returns the cached viewer document or ErrNotFound
func (s *StoreService) ReadViewerHTML() ([]byte, error) {
	data, err := s.filesystem.ReadFile(s.path(models.FolderHTML, viewerFileName))
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read viewer html: %w", err)
	}
	return data, nil
}

// FileExists checks whether a file is already stored
func (s *StoreService) FileExists(folder models.Folder, name string) (bool, error) {
	return s.filesystem.Exists(s.path(folder, name))
}

// WriteFile stores a file under the given folder
func (s *StoreService) WriteFile(folder models.Folder, name string, data []byte) error {
	return s.filesystem.WriteFile(s.path(folder, name), data)
}

// CreateFile opens a file for streaming writes
func (s *StoreService) CreateFile(folder models.Folder, name string) (io.WriteCloser, error) {
	return s.filesystem.Create(s.path(folder, name))
}

// ReadFile reads a stored file
func (s *StoreService) ReadFile(folder models.Folder, name string) ([]byte, error) {
	data, err := s.filesystem.ReadFile(s.path(folder, name))
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// OpenFile opens a stored file for streaming reads
func (s *StoreService) OpenFile(folder models.Folder, name string) (io.ReadCloser, error) {
	file, err := s.filesystem.Open(s.path(folder, name))
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return file, nil
}

// DeleteFile removes a stored file
func (s *StoreService) DeleteFile(folder models.Folder, name string) error {
	return s.filesystem.Remove(s.path(folder, name))
}

// ListFiles lists the file names stored under a folder
func (s *StoreService) ListFiles(folder models.Folder) ([]string, error) {
	names, err := s.filesystem.ReadDir(path.Join(s.root, string(folder)))
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return names, nil
}

// ResolveLocalURI returns the shell-relative URI for a stored file, or ""
// when the file is absent. The viewer page is served from the same origin,
// so these references resolve both online and offline.
func (s *StoreService) ResolveLocalURI(folder models.Folder, name string) string {
	exists, err := s.filesystem.Exists(s.path(folder, name))
	if err != nil || !exists {
		return ""
	}
	return fmt.Sprintf("/media/%s/%s", folder, name)
}

// MarkProcessed records that a URL was downloaded during this session
func (s *StoreService) MarkProcessed(folder models.Folder, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed[string(folder)+"|"+url] = true
}

// AlreadyProcessed reports whether a URL was already handled this session.
// The set is keyed per folder so a URL reused in both media roles still
// gets its own download per role.
func (s *StoreService) AlreadyProcessed(folder models.Folder, url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processed[string(folder)+"|"+url]
}

func (s *StoreService) path(folder models.Folder, name string) string {
	return path.Join(s.root, string(folder), name)
}
