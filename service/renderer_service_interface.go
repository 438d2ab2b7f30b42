package service

import (
	"context"

	"flipbook-cache/models"
)

// RendererServiceInterface defines the contract for displaying the viewer
// in the isolated browser context
type RendererServiceInterface interface {
	// RenderViewer navigates the browser context to the cached viewer
	// page, waits for its load signal, then hands over the rewritten
	// catalog as a structured message
	RenderViewer(ctx context.Context, catalog *models.Catalog) error

	// GeneratePreviewPDF renders the viewer with the given catalog and
	// returns a PDF snapshot of it
	GeneratePreviewPDF(ctx context.Context, catalog *models.Catalog) ([]byte, error)
}
