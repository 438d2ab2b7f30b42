package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"flipbook-cache/models"
)

// User-facing guidance for the two failure families the shell
// distinguishes: nothing cached yet vs. a retryable problem
const (
	msgFirstRunOffline = "No cached collection yet. Connect to the internet once for first-time setup, then retry."
	msgGenericRetry    = "The collection could not load. Check your connection and retry."
)

// ViewerService orchestrates the load flow as a small state machine:
// Idle → CheckingLocalData → {FirstTimeDownload | VersionCheck |
// LoadFromCache} → Rendering → Ready, with Error reachable from any step.
// Implements ViewerServiceInterface
type ViewerService struct {
	store        StoreServiceInterface
	connectivity ConnectivityServiceInterface
	client       CatalogClientInterface
	syncService  MediaSyncServiceInterface
	renderer     RendererServiceInterface

	mu             sync.Mutex
	busy           bool
	status         models.LoaderStatus
	versionChecked bool
	cacheOnly      bool
}

// NewViewerService creates a new ViewerService
func NewViewerService(
	store StoreServiceInterface,
	connectivity ConnectivityServiceInterface,
	client CatalogClientInterface,
	syncService MediaSyncServiceInterface,
	renderer RendererServiceInterface,
) *ViewerService {
	return &ViewerService{
		store:        store,
		connectivity: connectivity,
		client:       client,
		syncService:  syncService,
		renderer:     renderer,
		status:       models.LoaderStatus{State: models.StateIdle},
	}
}

// Ensure ViewerService implements ViewerServiceInterface
var _ ViewerServiceInterface = (*ViewerService)(nil)

// Status returns the current loader snapshot
func (s *ViewerService) Status() models.LoaderStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Retry re-enters Idle and runs the flow again; valid only from Error
func (s *ViewerService) Retry(ctx context.Context) (models.LoaderStatus, error) {
	s.mu.Lock()
	if s.status.State != models.StateError {
		current := s.status
		s.mu.Unlock()
		return current, fmt.Errorf("retry is only available from the error state (current: %s)", current.State)
	}
	s.status = models.LoaderStatus{State: models.StateIdle}
	s.mu.Unlock()
	return s.Load(ctx), nil
}

// Load runs the end-to-end flow and returns the resting status
func (s *ViewerService) Load(ctx context.Context) models.LoaderStatus {
	s.mu.Lock()
	if s.busy {
		current := s.status
		s.mu.Unlock()
		return current
	}
	s.busy = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	s.setState(models.StateCheckingLocalData)

	// Storage is re-evaluated on every load; cache-only mode from an
	// earlier failed load must not outlive the failure
	s.cacheOnly = false

	// Storage permission failure is fatal only when there is no cache to
	// degrade to
	layoutErr := s.store.EnsureLayout()

	cachedCatalog, catErr := s.store.ReadCatalog()
	if catErr != nil && !errors.Is(catErr, ErrNotFound) {
		return s.fail(fmt.Sprintf("failed to read cached catalog: %v", catErr), false)
	}
	_, htmlErr := s.store.ReadViewerHTML()
	if htmlErr != nil && !errors.Is(htmlErr, ErrNotFound) {
		return s.fail(fmt.Sprintf("failed to read cached viewer: %v", htmlErr), false)
	}
	hasCache := catErr == nil && htmlErr == nil

	if layoutErr != nil {
		if !hasCache {
			return s.fail(fmt.Sprintf("storage unavailable: %v", layoutErr), false)
		}
		log.Printf("⚠️  Storage unavailable, degrading to cache-only mode: %v", layoutErr)
		s.cacheOnly = true
	}

	if !hasCache {
		if err := s.firstTimeDownload(ctx); err != nil {
			if errors.Is(err, ErrOffline) {
				return s.fail(msgFirstRunOffline, true)
			}
			log.Printf("❌ First-time download failed: %v", err)
			return s.fail(msgGenericRetry, false)
		}
	} else {
		s.warmStart(ctx, cachedCatalog)
	}

	return s.render(ctx)
}

// firstTimeDownload handles the cold path: nothing to show without the
// network, so connectivity is required
func (s *ViewerService) firstTimeDownload(ctx context.Context) error {
	s.setState(models.StateFirstTimeDownload)

	if s.cacheOnly || !s.connectivity.IsOnline(ctx) {
		return ErrOffline
	}

	catalogRaw, err := s.client.FetchCatalog(ctx)
	if err != nil {
		return err
	}
	catalog, err := models.DecodeCatalog(catalogRaw)
	if err != nil {
		return err
	}

	html, err := s.client.FetchViewerHTML(ctx)
	if err != nil {
		return err
	}
	if err := s.store.WriteViewerHTML(html); err != nil {
		return err
	}

	stats, err := s.syncService.Sync(ctx, catalog, s.recordProgress)
	if err != nil {
		return err
	}
	s.setStats(stats)

	// The catalog just came off the wire; no point re-checking it this
	// session
	s.mu.Lock()
	s.versionChecked = true
	s.mu.Unlock()

	// Persist only after the pass succeeded, so the snapshot slot always
	// holds a catalog whose media had a full download attempt
	return s.store.WriteCatalog(catalogRaw)
}

// warmStart handles the cached path: at most one remote version check per
// session, full-document byte comparison, full re-sync on change. Every
// failure here is non-fatal because the cache can still render.
func (s *ViewerService) warmStart(ctx context.Context, cachedCatalog []byte) {
	if s.cacheOnly || s.versionChecked {
		s.setState(models.StateLoadFromCache)
		return
	}

	s.setState(models.StateVersionCheck)
	if !s.connectivity.IsOnline(ctx) {
		log.Printf("📴 Offline, loading from cache")
		s.setState(models.StateLoadFromCache)
		return
	}
	s.versionChecked = true

	remoteRaw, err := s.client.FetchCatalog(ctx)
	if err != nil {
		log.Printf("⚠️  Version check failed, falling back to cache: %v", err)
		s.setState(models.StateLoadFromCache)
		return
	}

	if bytes.Equal(remoteRaw, cachedCatalog) {
		log.Printf("✓ Catalog unchanged, loading from cache")
		s.setState(models.StateLoadFromCache)
		return
	}

	log.Printf("🔄 Catalog changed, running full update pass")
	catalog, err := models.DecodeCatalog(remoteRaw)
	if err != nil {
		log.Printf("⚠️  Remote catalog is malformed, keeping cached version: %v", err)
		s.setState(models.StateLoadFromCache)
		return
	}

	stats, err := s.syncService.Sync(ctx, catalog, s.recordProgress)
	if err != nil {
		log.Printf("⚠️  Update pass failed, keeping cached version: %v", err)
		s.setState(models.StateLoadFromCache)
		return
	}
	s.setStats(stats)

	if err := s.store.WriteCatalog(remoteRaw); err != nil {
		log.Printf("⚠️  Failed to persist updated catalog: %v", err)
	}

	// Best effort viewer refresh; the cached document still renders the
	// new catalog if this fails
	if html, err := s.client.FetchViewerHTML(ctx); err != nil {
		log.Printf("⚠️  Failed to refresh viewer HTML: %v", err)
	} else if err := s.store.WriteViewerHTML(html); err != nil {
		log.Printf("⚠️  Failed to persist refreshed viewer HTML: %v", err)
	}
}

// render rewrites the canonical persisted catalog and hands it to the
// embedded viewer. Rewriting always re-runs here so local references are
// fresh even when this pass downloaded nothing.
func (s *ViewerService) render(ctx context.Context) models.LoaderStatus {
	s.setState(models.StateRendering)

	raw, err := s.store.ReadCatalog()
	if err != nil {
		return s.fail(fmt.Sprintf("failed to read catalog for rendering: %v", err), false)
	}
	catalog, err := models.DecodeCatalog(raw)
	if err != nil {
		return s.fail(fmt.Sprintf("cached catalog is malformed: %v", err), false)
	}

	rewritten, err := s.syncService.Rewrite(catalog)
	if err != nil {
		// Fall back to the pre-rewrite catalog; remote URLs degrade to
		// network-dependent assets instead of a broken viewer
		log.Printf("⚠️  %v, rendering with pre-rewrite catalog", err)
		rewritten = catalog
	}

	if err := s.renderer.RenderViewer(ctx, rewritten); err != nil {
		log.Printf("❌ Rendering failed: %v", err)
		return s.fail(msgGenericRetry, false)
	}

	s.setState(models.StateReady)
	return s.Status()
}

func (s *ViewerService) setState(state models.LoaderState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.State = state
	s.status.Offline = false
	s.status.Message = ""
	log.Printf("▶️  Loader state: %s", state)
}

func (s *ViewerService) fail(message string, offline bool) models.LoaderStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.State = models.StateError
	s.status.Offline = offline
	s.status.Message = message
	log.Printf("❌ Loader error (offline=%v): %s", offline, message)
	return s.status
}

func (s *ViewerService) setStats(stats *models.SyncStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.LastStats = stats
}

func (s *ViewerService) recordProgress(current, total int, fileName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Progress = &models.ProgressSnapshot{Current: current, Total: total, FileName: fileName}
	log.Printf("📥 Downloading %d/%d: %s", current, total, fileName)
}
