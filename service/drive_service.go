package service

import (
	"context"
	"fmt"
	"io"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// DriveService downloads share-linked media through the Google Drive API.
// It is optional: when no service account is configured, the downloader
// falls back to the rewritten direct-download links over plain HTTP.
// Implements DriveServiceInterface
type DriveService struct {
	client *drive.Service
}

// NewDriveService creates a new DriveService instance
// credentialsPath should be the path to the Service Account JSON file
func NewDriveService(credentialsPath string) (*DriveService, error) {
	ctx := context.Background()

	// option.WithCredentialsFile automatically handles Service Account authentication
	driveService, err := drive.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &DriveService{
		client: driveService,
	}, nil
}

// Ensure DriveService implements DriveServiceInterface
var _ DriveServiceInterface = (*DriveService)(nil)

// DownloadFile streams a Drive file's bytes by file ID
func (ds *DriveService) DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, error) {
	resp, err := ds.client.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download drive file %s: %w", fileID, err)
	}
	return resp.Body, nil
}
