package service

import (
	"context"

	"flipbook-cache/models"
)

// ViewerServiceInterface defines the contract for the end-to-end load flow
type ViewerServiceInterface interface {
	// Load runs the full flow: decide fresh vs cached, sync media,
	// rewrite the catalog and render the viewer. The returned status is
	// the resting state (ready or error).
	Load(ctx context.Context) models.LoaderStatus

	// Status returns the current loader snapshot
	Status() models.LoaderStatus

	// Retry re-enters the flow after an error; it is only valid from the
	// error state
	Retry(ctx context.Context) (models.LoaderStatus, error)
}
