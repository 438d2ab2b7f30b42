package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"log"
	"net/http"

	"flipbook-cache/models"
	"flipbook-cache/utils"
)

// HTTPDownloader fetches media over plain HTTP and streams it into the
// store. Images optionally go through the optimizer before being stored.
// Implements Downloader
type HTTPDownloader struct {
	client         *http.Client
	store          StoreServiceInterface
	optimizeImages bool
}

// NewHTTPDownloader creates a new HTTPDownloader
func NewHTTPDownloader(store StoreServiceInterface, optimizeImages bool) *HTTPDownloader {
	return &HTTPDownloader{
		client:         &http.Client{},
		store:          store,
		optimizeImages: optimizeImages,
	}
}

// Ensure HTTPDownloader implements Downloader
var _ Downloader = (*HTTPDownloader)(nil)

// DownloadFile fetches the URL into folder/fileName
func (d *HTTPDownloader) DownloadFile(ctx context.Context, url string, folder models.Folder, fileName string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download of %s returned status %d", url, resp.StatusCode)
	}

	return d.save(resp.Body, folder, fileName)
}

// save streams the body into the store, optimizing images when enabled
func (d *HTTPDownloader) save(body io.Reader, folder models.Folder, fileName string) error {
	if d.optimizeImages && folder == models.FolderImages {
		data, err := io.ReadAll(body)
		if err != nil {
			return fmt.Errorf("failed to read image data: %w", err)
		}
		optimized, err := OptimizeImage(data, "medium")
		if err != nil {
			// Store the original bytes; a file the optimizer cannot decode
			// is still better cached than absent
			log.Printf("⚠️  Image optimization failed for %s, storing original: %v", fileName, err)
			optimized = data
		}
		return d.store.WriteFile(folder, fileName, optimized)
	}

	dst, err := d.store.CreateFile(folder, fileName)
	if err != nil {
		return fmt.Errorf("failed to create %s/%s: %w", folder, fileName, err)
	}
	if _, err := io.Copy(dst, body); err != nil {
		dst.Close()
		d.discardPartial(folder, fileName)
		return fmt.Errorf("failed to write %s/%s: %w", folder, fileName, err)
	}
	if err := dst.Close(); err != nil {
		d.discardPartial(folder, fileName)
		return fmt.Errorf("failed to finish %s/%s: %w", folder, fileName, err)
	}
	return nil
}

// discardPartial removes a half-written file. A truncated file left under
// its final name would satisfy the skip-if-exists check and get referenced
// by the rewrite pass, so the next sync could never repair it.
func (d *HTTPDownloader) discardPartial(folder models.Folder, fileName string) {
	if err := d.store.DeleteFile(folder, fileName); err != nil && !errors.Is(err, iofs.ErrNotExist) {
		log.Printf("⚠️  Could not remove partial file %s/%s: %v", folder, fileName, err)
	}
}

// DriveDownloader routes Drive share links through the Drive API when a
// service account is configured, and delegates everything else (and any
// Drive API failure at construction) to the plain HTTP transport.
// Implements Downloader
type DriveDownloader struct {
	drive    DriveServiceInterface
	fallback *HTTPDownloader
}

// NewDriveDownloader creates a new DriveDownloader
func NewDriveDownloader(drive DriveServiceInterface, fallback *HTTPDownloader) *DriveDownloader {
	return &DriveDownloader{
		drive:    drive,
		fallback: fallback,
	}
}

// Ensure DriveDownloader implements Downloader
var _ Downloader = (*DriveDownloader)(nil)

// DownloadFile fetches the URL into folder/fileName via the Drive API for
// Drive links, plain HTTP otherwise
func (d *DriveDownloader) DownloadFile(ctx context.Context, url string, folder models.Folder, fileName string) error {
	fileID, ok := utils.DriveFileID(url)
	if !ok {
		return d.fallback.DownloadFile(ctx, url, folder, fileName)
	}

	body, err := d.drive.DownloadFile(ctx, fileID)
	if err != nil {
		return fmt.Errorf("drive download failed for %s: %w", fileID, err)
	}
	defer body.Close()

	return d.fallback.save(body, folder, fileName)
}
