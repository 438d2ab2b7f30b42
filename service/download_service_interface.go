package service

import (
	"context"

	"flipbook-cache/models"
)

// Downloader is the transport capability: it fetches bytes from a URL
// directly into the store so large media never sits in memory
type Downloader interface {
	DownloadFile(ctx context.Context, url string, folder models.Folder, fileName string) error
}
