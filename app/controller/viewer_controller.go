package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"flipbook-cache/models"
	"flipbook-cache/service"
)

// ViewerController handles HTTP requests for the viewer load flow
type ViewerController struct {
	viewerService service.ViewerServiceInterface
	storeService  service.StoreServiceInterface
	syncService   service.MediaSyncServiceInterface
	renderer      service.RendererServiceInterface
}

// NewViewerController creates a new ViewerController
func NewViewerController(
	viewerService service.ViewerServiceInterface,
	storeService service.StoreServiceInterface,
	syncService service.MediaSyncServiceInterface,
	renderer service.RendererServiceInterface,
) *ViewerController {
	return &ViewerController{
		viewerService: viewerService,
		storeService:  storeService,
		syncService:   syncService,
		renderer:      renderer,
	}
}

// LoadViewer handles POST /viewer/load
// Runs the full load flow and returns the resting loader status
func (c *ViewerController) LoadViewer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := c.viewerService.Load(r.Context())
	writeStatus(w, status)
}

// GetStatus handles GET /viewer/status
func (c *ViewerController) GetStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(c.viewerService.Status()); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// Retry handles POST /viewer/retry
// Re-enters the load flow; only valid from the error state
func (c *ViewerController) Retry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status, err := c.viewerService.Retry(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeStatus(w, status)
}

// RenderViewer handles GET /viewer/render
// Serves the cached viewer HTML; the embedded browser context navigates here
func (c *ViewerController) RenderViewer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	html, err := c.storeService.ReadViewerHTML()
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			http.Error(w, "No cached viewer yet, run /viewer/load first", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to read cached viewer: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

// PreviewPDF handles GET /viewer/preview.pdf
// Renders the offline viewer and returns a PDF snapshot of it
func (c *ViewerController) PreviewPDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	raw, err := c.storeService.ReadCatalog()
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			http.Error(w, "No cached catalog yet, run /viewer/load first", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to read cached catalog: %v", err), http.StatusInternalServerError)
		return
	}

	catalog, err := models.DecodeCatalog(raw)
	if err != nil {
		http.Error(w, fmt.Sprintf("Cached catalog is malformed: %v", err), http.StatusInternalServerError)
		return
	}

	rewritten, err := c.syncService.Rewrite(catalog)
	if err != nil {
		rewritten = catalog
	}

	pdf, err := c.renderer.GeneratePreviewPDF(r.Context(), rewritten)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to generate preview: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="catalog-preview.pdf"`)
	w.Write(pdf)
}

func writeStatus(w http.ResponseWriter, status models.LoaderStatus) {
	w.Header().Set("Content-Type", "application/json")
	if status.State == models.StateError {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(status); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
