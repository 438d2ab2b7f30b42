package service

import (
	"context"

	"flipbook-cache/models"
)

// MediaSyncServiceInterface defines the contract for reconciling a
// catalog's media references against local storage
type MediaSyncServiceInterface interface {
	// Extract walks the catalog once and maps every distinct
	// (URL, folder) reference to its local storage record
	Extract(catalog *models.Catalog) map[models.MediaKey]models.MediaRecord

	// Sync downloads missing media (at most once per unique reference),
	// then garbage-collects files the catalog no longer references.
	// Per-file failures are aggregated into the returned stats; only
	// pass-level failures return an error.
	Sync(ctx context.Context, catalog *models.Catalog, progress models.ProgressFunc) (*models.SyncStats, error)

	// Rewrite returns a deep copy of the catalog with every remote media
	// reference replaced by its local URI where the file exists; missing
	// files keep their remote URL as a graceful fallback.
	Rewrite(catalog *models.Catalog) (*models.Catalog, error)
}
