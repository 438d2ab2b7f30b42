package models

import (
	"encoding/json"
	"fmt"
)

// Catalog is the root document fetched from the backend: a version marker
// plus a mapping from collection key to Collection. Collection keys are
// unique; insertion order carries no meaning.
type Catalog struct {
	Version     string                `json:"version"`
	Collections map[string]Collection `json:"collections"`
}

// Collection is a named group of products with an optional banner image
type Collection struct {
	Key            string    `json:"key"`
	Title          string    `json:"title"`
	Subtitle       string    `json:"subtitle,omitempty"`
	BannerImageURL string    `json:"banner_image_url,omitempty"`
	Products       []Product `json:"products"`
}

// Product is a sellable item keyed by style_code. The style code seeds
// deterministic local media filenames, so it must stay stable across
// catalog versions that reference the same product.
type Product struct {
	StyleCode string `json:"style_code"`
	Name      string `json:"name,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
	VideoURL  string `json:"video_url,omitempty"`
}

// DecodeCatalog parses a raw catalog document
func DecodeCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return &catalog, nil
}

// Encode serializes the catalog back to JSON
func (c *Catalog) Encode() ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog: %w", err)
	}
	return data, nil
}

// Clone returns a deep copy of the catalog. The rewrite pass substitutes
// local media references into the copy so the original keeps its remote
// URLs for future diffing.
func (c *Catalog) Clone() *Catalog {
	copied := &Catalog{
		Version:     c.Version,
		Collections: make(map[string]Collection, len(c.Collections)),
	}
	for key, collection := range c.Collections {
		products := make([]Product, len(collection.Products))
		copy(products, collection.Products)
		collection.Products = products
		copied.Collections[key] = collection
	}
	return copied
}
