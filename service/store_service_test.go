package service

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flipbook-cache/fs"
	"flipbook-cache/models"
)

func newTestStore(t *testing.T) (*StoreService, *fs.MemFilesystem) {
	t.Helper()
	mem := fs.NewMemFilesystem()
	store := NewStoreService(mem, "data")
	require.NoError(t, store.EnsureLayout())
	return store, mem
}

func TestStoreService_EnsureLayoutIdempotent(t *testing.T) {
	store, mem := newTestStore(t)

	// Second run over existing folders must not fail
	require.NoError(t, store.EnsureLayout())

	for _, folder := range []string{"html", "json", "images", "videos"} {
		exists, err := mem.Exists("data/" + folder)
		require.NoError(t, err)
		assert.True(t, exists, "missing folder %s", folder)
	}
}

func TestStoreService_EnsureLayoutPermissionDenied(t *testing.T) {
	mem := fs.NewMemFilesystem()
	mem.FailWrites = true
	store := NewStoreService(mem, "data")

	err := store.EnsureLayout()
	require.Error(t, err)

	var permErr *PermissionError
	assert.ErrorAs(t, err, &permErr)
}

func TestStoreService_CatalogFirstRunNotFound(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.ReadCatalog()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreService_CatalogSingleSlot(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.WriteCatalog([]byte(`{"version":"1"}`)))
	require.NoError(t, store.WriteCatalog([]byte(`{"version":"2"}`)))

	data, err := store.ReadCatalog()
	require.NoError(t, err)
	assert.Equal(t, `{"version":"2"}`, string(data))
}

func TestStoreService_ViewerHTMLRoundtrip(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.ReadViewerHTML()
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.WriteViewerHTML([]byte("<html><body>viewer</body></html>")))
	data, err := store.ReadViewerHTML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "viewer")
}

func TestStoreService_ResolveLocalURI(t *testing.T) {
	store, _ := newTestStore(t)

	assert.Equal(t, "", store.ResolveLocalURI(models.FolderImages, "a1.jpg"))

	require.NoError(t, store.WriteFile(models.FolderImages, "a1.jpg", []byte("img")))
	assert.Equal(t, "/media/images/a1.jpg", store.ResolveLocalURI(models.FolderImages, "a1.jpg"))
}

func TestStoreService_OpenFileStreamsStoredBytes(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.WriteFile(models.FolderVideos, "a1.mp4", []byte("video-bytes")))

	file, err := store.OpenFile(models.FolderVideos, "a1.mp4")
	require.NoError(t, err)
	defer file.Close()

	data, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "video-bytes", string(data))

	_, err = store.OpenFile(models.FolderVideos, "missing.mp4")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreService_ListAndDelete(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.WriteFile(models.FolderImages, "a.jpg", nil))
	require.NoError(t, store.WriteFile(models.FolderImages, "b.jpg", nil))

	names, err := store.ListFiles(models.FolderImages)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, names)

	require.NoError(t, store.DeleteFile(models.FolderImages, "a.jpg"))
	names, err = store.ListFiles(models.FolderImages)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.jpg"}, names)
}

func TestStoreService_ProcessedSetKeyedPerFolder(t *testing.T) {
	store, _ := newTestStore(t)
	url := "https://host/shared.mp4"

	assert.False(t, store.AlreadyProcessed(models.FolderImages, url))

	store.MarkProcessed(models.FolderImages, url)
	assert.True(t, store.AlreadyProcessed(models.FolderImages, url))

	// Same URL in the other media role is still unprocessed
	assert.False(t, store.AlreadyProcessed(models.FolderVideos, url))
}
