package service

import (
	"io"

	"flipbook-cache/models"
)

// StoreServiceInterface defines the contract for the local content store
type StoreServiceInterface interface {
	// EnsureLayout idempotently creates the root folder and its fixed
	// subfolders (html, json, images, videos)
	EnsureLayout() error

	// WriteCatalog persists the catalog document as the single canonical
	// offline snapshot, overwriting any previous one
	WriteCatalog(data []byte) error
	// ReadCatalog returns the persisted snapshot, or ErrNotFound on first run
	ReadCatalog() ([]byte, error)

	WriteViewerHTML(data []byte) error
	// ReadViewerHTML returns the cached viewer document, or ErrNotFound
	ReadViewerHTML() ([]byte, error)

	FileExists(folder models.Folder, name string) (bool, error)
	WriteFile(folder models.Folder, name string, data []byte) error
	// CreateFile opens a file for streaming writes (large media downloads)
	CreateFile(folder models.Folder, name string) (io.WriteCloser, error)
	ReadFile(folder models.Folder, name string) ([]byte, error)
	// OpenFile opens a stored file for streaming reads (serving large media)
	OpenFile(folder models.Folder, name string) (io.ReadCloser, error)
	DeleteFile(folder models.Folder, name string) error
	ListFiles(folder models.Folder) ([]string, error)

	// ResolveLocalURI returns an addressable reference to a stored file
	// (served by the shell under /media/), or "" if the file is absent
	ResolveLocalURI(folder models.Folder, name string) string

	// MarkProcessed and AlreadyProcessed maintain the in-session dedup set
	// of download URLs, keyed per target folder
	MarkProcessed(folder models.Folder, url string)
	AlreadyProcessed(folder models.Folder, url string) bool
}
