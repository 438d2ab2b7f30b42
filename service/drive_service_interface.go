package service

import (
	"context"
	"io"
)

// DriveServiceInterface defines the contract for Google Drive API downloads
type DriveServiceInterface interface {
	// DownloadFile streams the content of a Drive file by its ID
	DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, error)
}
