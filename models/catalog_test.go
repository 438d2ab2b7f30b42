package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCatalog(t *testing.T) {
	raw := `{"version":"v1","collections":{"summer":{"key":"summer","products":[{"style_code":"A1","image_url":"https://host/a1.jpg"}]}}}`

	catalog, err := DecodeCatalog([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "v1", catalog.Version)
	require.Contains(t, catalog.Collections, "summer")
	require.Len(t, catalog.Collections["summer"].Products, 1)
	assert.Equal(t, "A1", catalog.Collections["summer"].Products[0].StyleCode)
}

func TestDecodeCatalog_Malformed(t *testing.T) {
	_, err := DecodeCatalog([]byte(`{"version":`))
	assert.Error(t, err)
}

func TestCatalogClone_IsDeep(t *testing.T) {
	catalog, err := DecodeCatalog([]byte(`{"version":"v1","collections":{"c":{"key":"c","banner_image_url":"https://host/b.jpg","products":[{"style_code":"A1","image_url":"https://host/a1.jpg"}]}}}`))
	require.NoError(t, err)

	copied := catalog.Clone()
	collection := copied.Collections["c"]
	collection.BannerImageURL = "/media/images/banner.jpg"
	collection.Products[0].ImageURL = "/media/images/a1.jpg"
	copied.Collections["c"] = collection

	// Mutating the copy leaves the original's remote URLs intact
	assert.Equal(t, "https://host/b.jpg", catalog.Collections["c"].BannerImageURL)
	assert.Equal(t, "https://host/a1.jpg", catalog.Collections["c"].Products[0].ImageURL)
}
