package service

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/google/uuid"

	"flipbook-cache/models"
	"flipbook-cache/utils"
)

// MediaSyncService reconciles the media a catalog references against the
// local store: extraction, deduped sequential download, catalog rewriting
// and orphan cleanup, always in that order within one pass.
// Implements MediaSyncServiceInterface
type MediaSyncService struct {
	store      StoreServiceInterface
	downloader Downloader
}

// NewMediaSyncService creates a new MediaSyncService
func NewMediaSyncService(store StoreServiceInterface, downloader Downloader) *MediaSyncService {
	return &MediaSyncService{
		store:      store,
		downloader: downloader,
	}
}

// Ensure MediaSyncService implements MediaSyncServiceInterface
var _ MediaSyncServiceInterface = (*MediaSyncService)(nil)

// Extract walks the catalog in a deterministic order (collections by key,
// products in sequence) and builds the reference map. The map is keyed by
// (URL, folder): a URL reused as both an image and a video gets one record
// per role, trading a duplicate download for unambiguous folder
// assignment. Within one role the first encounter wins, which keeps the
// filename prefix stable for URLs shared between products.
func (s *MediaSyncService) Extract(catalog *models.Catalog) map[models.MediaKey]models.MediaRecord {
	records := make(map[models.MediaKey]models.MediaRecord)

	keys := make([]string, 0, len(catalog.Collections))
	for key := range catalog.Collections {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	add := func(prefix, rawURL string, folder models.Folder) {
		if rawURL == "" {
			return
		}
		key := models.MediaKey{URL: rawURL, Folder: folder}
		if _, seen := records[key]; seen {
			return
		}
		fileName, err := utils.DeriveFilename(prefix, rawURL, folder)
		if err != nil {
			// Recoverable: the asset still gets a unique (but
			// non-deterministic) slot instead of aborting the pass
			fileName = utils.SyntheticFilename(prefix, folder)
			log.Printf("⚠️  Filename derivation failed for %s, using fallback %s: %v", rawURL, fileName, err)
		}
		records[key] = models.MediaRecord{
			RemoteURL:   rawURL,
			Folder:      folder,
			FileName:    fileName,
			DownloadURL: utils.RewriteDownloadURL(rawURL),
		}
	}

	for _, key := range keys {
		collection := catalog.Collections[key]
		add(key, collection.BannerImageURL, models.FolderImages)
		for _, product := range collection.Products {
			add(product.StyleCode, product.ImageURL, models.FolderImages)
			add(product.StyleCode, product.VideoURL, models.FolderVideos)
		}
	}
	return records
}

// Sync runs the full pass: extraction completes before any download
// starts, downloads proceed strictly sequentially, and cleanup runs only
// after every download finished or failed.
func (s *MediaSyncService) Sync(ctx context.Context, catalog *models.Catalog, progress models.ProgressFunc) (*models.SyncStats, error) {
	stats := &models.SyncStats{PassID: uuid.NewString()}

	records := s.Extract(catalog)
	ordered := sortedRecords(records)
	stats.Total = len(ordered)

	log.Printf("🔄 Sync pass %s: %d unique media references", stats.PassID, stats.Total)

	for i, record := range ordered {
		if progress != nil {
			progress(i+1, stats.Total, record.FileName)
		}

		exists, err := s.store.FileExists(record.Folder, record.FileName)
		if err == nil && exists {
			log.Printf("⏭️  Skipping %s (already exists on disk)", record.FileName)
			stats.Skipped++
			continue
		}

		// Extraction already dedupes; this guards against re-entry within
		// the same session bypassing it
		if s.store.AlreadyProcessed(record.Folder, record.DownloadURL) {
			log.Printf("⏭️  Skipping %s (url already processed this session)", record.FileName)
			stats.Skipped++
			continue
		}

		if err := s.downloader.DownloadFile(ctx, record.DownloadURL, record.Folder, record.FileName); err != nil {
			downloadErr := &DownloadError{URL: record.DownloadURL, FileName: record.FileName, Err: err}
			log.Printf("❌ %v", downloadErr)
			stats.Errors = append(stats.Errors, downloadErr.Error())
			stats.Failed++
			continue
		}

		s.store.MarkProcessed(record.Folder, record.DownloadURL)
		log.Printf("✓ Downloaded %s/%s", record.Folder, record.FileName)
		stats.Downloaded++
	}

	stats.Deleted = s.cleanup(records)

	log.Printf("🎉 Sync pass %s completed: %d downloaded, %d skipped, %d failed, %d orphans deleted out of %d total",
		stats.PassID, stats.Downloaded, stats.Skipped, stats.Failed, stats.Deleted, stats.Total)
	return stats, nil
}

// cleanup deletes stored media files the current catalog no longer wants.
// Delete failures are logged and skipped, never propagated.
func (s *MediaSyncService) cleanup(records map[models.MediaKey]models.MediaRecord) int {
	wanted := make(map[models.Folder]map[string]bool)
	for _, folder := range models.MediaFolders {
		wanted[folder] = make(map[string]bool)
	}
	for _, record := range records {
		wanted[record.Folder][record.FileName] = true
	}

	deleted := 0
	for _, folder := range models.MediaFolders {
		names, err := s.store.ListFiles(folder)
		if err != nil {
			log.Printf("⚠️  Cleanup could not list %s: %v", folder, err)
			continue
		}
		for _, name := range names {
			if wanted[folder][name] {
				continue
			}
			if err := s.store.DeleteFile(folder, name); err != nil {
				log.Printf("⚠️  Cleanup could not delete %s/%s: %v", folder, name, err)
				continue
			}
			log.Printf("🗑️  Deleted orphaned file %s/%s", folder, name)
			deleted++
		}
	}
	return deleted
}

// Rewrite produces the viewer-consumable catalog copy. It reuses the
// extraction map so every field resolves to the exact filename chosen in
// the download step, including URLs shared across products.
func (s *MediaSyncService) Rewrite(catalog *models.Catalog) (*models.Catalog, error) {
	if catalog == nil || catalog.Collections == nil {
		return nil, &RewriteError{Err: fmt.Errorf("catalog has no collections")}
	}

	records := s.Extract(catalog)
	copied := catalog.Clone()

	for key, collection := range copied.Collections {
		collection.BannerImageURL = s.localOrRemote(records, collection.BannerImageURL, models.FolderImages)
		for i := range collection.Products {
			product := &collection.Products[i]
			product.ImageURL = s.localOrRemote(records, product.ImageURL, models.FolderImages)
			product.VideoURL = s.localOrRemote(records, product.VideoURL, models.FolderVideos)
		}
		copied.Collections[key] = collection
	}
	return copied, nil
}

// localOrRemote substitutes the local URI when the file is stored; a
// missing file (failed download, no prior cache) keeps the remote URL so
// the viewer shows a network-dependent asset instead of a broken one
func (s *MediaSyncService) localOrRemote(records map[models.MediaKey]models.MediaRecord, rawURL string, folder models.Folder) string {
	if rawURL == "" {
		return rawURL
	}
	record, ok := records[models.MediaKey{URL: rawURL, Folder: folder}]
	if !ok {
		return rawURL
	}
	if uri := s.store.ResolveLocalURI(record.Folder, record.FileName); uri != "" {
		return uri
	}
	return rawURL
}

func sortedRecords(records map[models.MediaKey]models.MediaRecord) []models.MediaRecord {
	ordered := make([]models.MediaRecord, 0, len(records))
	for _, record := range records {
		ordered = append(ordered, record)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Folder != ordered[j].Folder {
			return ordered[i].Folder < ordered[j].Folder
		}
		return ordered[i].FileName < ordered[j].FileName
	})
	return ordered
}
