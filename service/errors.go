package service

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services
var (
	// ErrNotFound signals a missing cache entry; callers treat it as
	// "first run", never as a failure.
	ErrNotFound = errors.New("not found")

	// ErrOffline signals that the backend is unreachable
	ErrOffline = errors.New("offline")

	// ErrEmptyResult signals a backend response with an empty row array
	ErrEmptyResult = errors.New("empty result")
)

// NetworkError wraps a failed backend request (transport failure or
// non-2xx status). Callers fall back to the cache when one exists.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError wraps a malformed remote payload. For fallback purposes it
// behaves like a NetworkError.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error during %s: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// PermissionError wraps a storage permission denial. Fatal on first run,
// degrades to cache-only mode once a cache exists.
type PermissionError struct {
	Path string
	Err  error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("storage permission denied for %s: %v", e.Path, e.Err)
}

func (e *PermissionError) Unwrap() error { return e.Err }

// DownloadError is a per-file download failure. It is aggregated into the
// pass stats and never aborts the batch.
type DownloadError struct {
	URL      string
	FileName string
	Err      error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("failed to download %s as %s: %v", e.URL, e.FileName, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// RewriteError is fatal for the current pass; the caller falls back to the
// pre-rewrite cached catalog when one exists.
type RewriteError struct {
	Err error
}

func (e *RewriteError) Error() string {
	return fmt.Sprintf("catalog rewrite failed: %v", e.Err)
}

func (e *RewriteError) Unwrap() error { return e.Err }
