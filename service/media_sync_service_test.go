package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flipbook-cache/models"
	"flipbook-cache/utils"
)

// fakeDownloader records download calls and writes placeholder bytes into
// the store; URLs listed in failURLs simulate transport failures
type fakeDownloader struct {
	store    StoreServiceInterface
	calls    []string
	failURLs map[string]bool
}

func newFakeDownloader(store StoreServiceInterface) *fakeDownloader {
	return &fakeDownloader{store: store, failURLs: make(map[string]bool)}
}

func (d *fakeDownloader) DownloadFile(ctx context.Context, url string, folder models.Folder, fileName string) error {
	d.calls = append(d.calls, url)
	if d.failURLs[url] {
		return fmt.Errorf("simulated transport failure")
	}
	return d.store.WriteFile(folder, fileName, []byte("bytes:"+url))
}

func testCatalog() *models.Catalog {
	return &models.Catalog{
		Version: "v1",
		Collections: map[string]models.Collection{
			"summer": {
				Key:            "summer",
				Title:          "Summer",
				BannerImageURL: "https://host/banner.jpg",
				Products: []models.Product{
					{StyleCode: "A1", ImageURL: "https://host/a1.jpg", VideoURL: "https://host/a1.mp4"},
					{StyleCode: "B2", ImageURL: "https://host/b2.jpg"},
				},
			},
		},
	}
}

func newSyncFixture(t *testing.T) (*MediaSyncService, *StoreService, *fakeDownloader) {
	t.Helper()
	store, _ := newTestStore(t)
	downloader := newFakeDownloader(store)
	return NewMediaSyncService(store, downloader), store, downloader
}

func TestMediaSyncService_ExtractDedupesByURL(t *testing.T) {
	syncService, _, _ := newSyncFixture(t)

	catalog := testCatalog()
	// Two products referencing the identical media URL
	collection := catalog.Collections["summer"]
	collection.Products = append(collection.Products, models.Product{StyleCode: "C3", ImageURL: "https://host/a1.jpg"})
	catalog.Collections["summer"] = collection

	records := syncService.Extract(catalog)

	// banner + a1 image + a1 video + b2 image; the shared URL collapses
	assert.Len(t, records, 4)
	record := records[models.MediaKey{URL: "https://host/a1.jpg", Folder: models.FolderImages}]
	assert.Equal(t, models.FolderImages, record.Folder)
	// First encounter (product A1) names the file
	assert.Contains(t, record.FileName, "a1_")
}

func TestMediaSyncService_ExtractKeysByRole(t *testing.T) {
	syncService, _, _ := newSyncFixture(t)

	// The same URL serving as image and video gets one record per role
	catalog := &models.Catalog{
		Version: "v1",
		Collections: map[string]models.Collection{
			"c": {Key: "c", Products: []models.Product{
				{StyleCode: "A1", ImageURL: "https://host/shared.mp4", VideoURL: "https://host/shared.mp4"},
			}},
		},
	}

	records := syncService.Extract(catalog)
	require.Len(t, records, 2)
	assert.NotEqual(t,
		records[models.MediaKey{URL: "https://host/shared.mp4", Folder: models.FolderImages}].Folder,
		records[models.MediaKey{URL: "https://host/shared.mp4", Folder: models.FolderVideos}].Folder,
	)
}

func TestMediaSyncService_ExtractRewritesDriveLinks(t *testing.T) {
	syncService, _, _ := newSyncFixture(t)

	catalog := &models.Catalog{
		Version: "v1",
		Collections: map[string]models.Collection{
			"c": {Key: "c", Products: []models.Product{
				{StyleCode: "A1", VideoURL: "https://drive.google.com/file/d/1Clip/view?usp=sharing"},
			}},
		},
	}

	records := syncService.Extract(catalog)
	record := records[models.MediaKey{URL: "https://drive.google.com/file/d/1Clip/view?usp=sharing", Folder: models.FolderVideos}]
	assert.Equal(t, "https://drive.google.com/uc?export=download&id=1Clip", record.DownloadURL)
	assert.Equal(t, "a1_1Clip.mp4", record.FileName)
}

func TestMediaSyncService_SyncDownloadsOncePerUniqueURL(t *testing.T) {
	syncService, _, downloader := newSyncFixture(t)

	catalog := testCatalog()
	collection := catalog.Collections["summer"]
	collection.Products = append(collection.Products, models.Product{StyleCode: "C3", ImageURL: "https://host/a1.jpg"})
	catalog.Collections["summer"] = collection

	stats, err := syncService.Sync(context.Background(), catalog, nil)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 4, stats.Downloaded)
	assert.Equal(t, 0, stats.Failed)
	assert.Len(t, downloader.calls, 4)
	assert.NotEmpty(t, stats.PassID)
}

func TestMediaSyncService_SyncIdempotent(t *testing.T) {
	syncService, _, downloader := newSyncFixture(t)
	catalog := testCatalog()

	first, err := syncService.Sync(context.Background(), catalog, nil)
	require.NoError(t, err)
	require.Equal(t, 4, first.Downloaded)

	second, err := syncService.Sync(context.Background(), catalog, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, second.Downloaded)
	assert.Equal(t, 4, second.Skipped)
	assert.Equal(t, 0, second.Deleted)
	assert.Len(t, downloader.calls, 4, "no new transport calls on re-sync")
}

func TestMediaSyncService_SyncAggregatesFailures(t *testing.T) {
	syncService, store, downloader := newSyncFixture(t)
	downloader.failURLs["https://host/a1.mp4"] = true

	catalog := testCatalog()
	stats, err := syncService.Sync(context.Background(), catalog, nil)
	require.NoError(t, err, "per-file failures must not abort the pass")

	assert.Equal(t, 3, stats.Downloaded)
	assert.Equal(t, 1, stats.Failed)
	require.Len(t, stats.Errors, 1)
	assert.Contains(t, stats.Errors[0], "a1.mp4")

	// The failed file is absent, the rest are stored
	names, err := store.ListFiles(models.FolderVideos)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestMediaSyncService_SyncReportsProgress(t *testing.T) {
	syncService, _, _ := newSyncFixture(t)

	var seen []string
	var totals []int
	progress := func(current, total int, fileName string) {
		seen = append(seen, fmt.Sprintf("%d:%s", current, fileName))
		totals = append(totals, total)
	}

	_, err := syncService.Sync(context.Background(), testCatalog(), progress)
	require.NoError(t, err)

	require.Len(t, seen, 4)
	for _, total := range totals {
		assert.Equal(t, 4, total)
	}
}

func TestMediaSyncService_CleanupDeletesOrphans(t *testing.T) {
	syncService, store, _ := newSyncFixture(t)
	catalog := testCatalog()

	// Stored files {wanted A, wanted C, orphan B}
	records := syncService.Extract(catalog)
	for _, record := range records {
		require.NoError(t, store.WriteFile(record.Folder, record.FileName, []byte("x")))
	}
	require.NoError(t, store.WriteFile(models.FolderImages, "old_deadbeef00.jpg", []byte("orphan")))
	require.NoError(t, store.WriteFile(models.FolderVideos, "old_deadbeef00.mp4", []byte("orphan")))

	stats, err := syncService.Sync(context.Background(), catalog, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Deleted)
	assert.Equal(t, 4, stats.Skipped)

	imageNames, err := store.ListFiles(models.FolderImages)
	require.NoError(t, err)
	assert.NotContains(t, imageNames, "old_deadbeef00.jpg")
	assert.Len(t, imageNames, 3)
}

func TestMediaSyncService_RewriteSubstitutesLocalURIs(t *testing.T) {
	syncService, _, _ := newSyncFixture(t)
	catalog := testCatalog()

	_, err := syncService.Sync(context.Background(), catalog, nil)
	require.NoError(t, err)

	rewritten, err := syncService.Rewrite(catalog)
	require.NoError(t, err)

	summer := rewritten.Collections["summer"]
	bannerName, err := utils.DeriveFilename("summer", "https://host/banner.jpg", models.FolderImages)
	require.NoError(t, err)
	assert.Equal(t, "/media/images/"+bannerName, summer.BannerImageURL)
	assert.Equal(t, "/media/images/"+mustDerive(t, "A1", "https://host/a1.jpg", models.FolderImages), summer.Products[0].ImageURL)
	assert.Equal(t, "/media/videos/"+mustDerive(t, "A1", "https://host/a1.mp4", models.FolderVideos), summer.Products[0].VideoURL)

	// The original catalog keeps its remote URLs for future diffing
	original := catalog.Collections["summer"]
	assert.Equal(t, "https://host/banner.jpg", original.BannerImageURL)
	assert.Equal(t, "https://host/a1.jpg", original.Products[0].ImageURL)
}

func TestMediaSyncService_RewriteFallsBackOnMissingFile(t *testing.T) {
	syncService, _, downloader := newSyncFixture(t)
	downloader.failURLs["https://host/a1.jpg"] = true

	catalog := testCatalog()
	_, err := syncService.Sync(context.Background(), catalog, nil)
	require.NoError(t, err)

	rewritten, err := syncService.Rewrite(catalog)
	require.NoError(t, err)

	summer := rewritten.Collections["summer"]
	// The failed download keeps its remote URL; the successes are local
	assert.Equal(t, "https://host/a1.jpg", summer.Products[0].ImageURL)
	assert.Contains(t, summer.Products[1].ImageURL, "/media/images/")
	assert.Contains(t, summer.BannerImageURL, "/media/images/")
}

func TestMediaSyncService_RewriteSharedURLResolvesForAllReferrers(t *testing.T) {
	syncService, _, _ := newSyncFixture(t)

	catalog := testCatalog()
	collection := catalog.Collections["summer"]
	collection.Products = append(collection.Products, models.Product{StyleCode: "C3", ImageURL: "https://host/a1.jpg"})
	catalog.Collections["summer"] = collection

	_, err := syncService.Sync(context.Background(), catalog, nil)
	require.NoError(t, err)

	rewritten, err := syncService.Rewrite(catalog)
	require.NoError(t, err)

	products := rewritten.Collections["summer"].Products
	// Both referrers of the shared URL resolve to the same local file
	assert.Equal(t, products[0].ImageURL, products[2].ImageURL)
	assert.Contains(t, products[2].ImageURL, "/media/images/")
}

func TestMediaSyncService_RewriteRejectsEmptyCatalog(t *testing.T) {
	syncService, _, _ := newSyncFixture(t)

	_, err := syncService.Rewrite(&models.Catalog{})
	require.Error(t, err)
	var rewriteErr *RewriteError
	assert.ErrorAs(t, err, &rewriteErr)
}

func mustDerive(t *testing.T, prefix, url string, folder models.Folder) string {
	t.Helper()
	name, err := utils.DeriveFilename(prefix, url, folder)
	require.NoError(t, err)
	return name
}
