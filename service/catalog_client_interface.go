package service

import "context"

// CatalogClientInterface defines the contract for fetching remote content
// from the backend endpoint
type CatalogClientInterface interface {
	// FetchCatalog returns the raw catalog JSON document
	FetchCatalog(ctx context.Context) ([]byte, error)
	// FetchViewerHTML resolves the viewer artifact's URL and downloads
	// the validated HTML document
	FetchViewerHTML(ctx context.Context) ([]byte, error)
}
