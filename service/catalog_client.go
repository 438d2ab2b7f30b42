package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"flipbook-cache/utils"
)

const (
	catalogField   = "catalog"
	viewerURLField = "viewer_url"
)

// CatalogClient fetches the catalog JSON and the viewer HTML location from
// a single backend endpoint that returns column-selected rows. The
// credentials are a static pair (api key + bearer token) configured once.
// Implements CatalogClientInterface
type CatalogClient struct {
	baseURL string
	apiKey  string
	token   string
	client  *http.Client
}

// NewCatalogClient creates a new CatalogClient for the given endpoint
func NewCatalogClient(baseURL, apiKey, token string) *CatalogClient {
	return &CatalogClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		token:   token,
		client:  &http.Client{},
	}
}

// Ensure CatalogClient implements CatalogClientInterface
var _ CatalogClientInterface = (*CatalogClient)(nil)

// FetchField issues an authenticated GET with a column-selector parameter
// and returns the requested field of the first row. The backend always
// answers with a JSON array; an empty array means the content row was
// never provisioned.
func (c *CatalogClient) FetchField(ctx context.Context, field string) (json.RawMessage, error) {
	requestURL := fmt.Sprintf("%s?select=%s", c.baseURL, url.QueryEscape(field))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, &NetworkError{Op: "fetch " + field, Err: err}
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: "fetch " + field, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &NetworkError{Op: "fetch " + field, Err: fmt.Errorf("backend returned status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: "fetch " + field, Err: err}
	}

	var rows []map[string]json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, &ParseError{Op: "fetch " + field, Err: err}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("fetch %s: %w", field, ErrEmptyResult)
	}

	value, ok := rows[0][field]
	if !ok || len(value) == 0 {
		return nil, fmt.Errorf("fetch %s: %w", field, ErrEmptyResult)
	}
	return value, nil
}

// FetchCatalog returns the raw catalog JSON document from the backend
func (c *CatalogClient) FetchCatalog(ctx context.Context) ([]byte, error) {
	log.Printf("🔄 Fetching remote catalog")
	value, err := c.FetchField(ctx, catalogField)
	if err != nil {
		return nil, err
	}
	return value, nil
}

// FetchViewerHTML fetches the viewer artifact's URL from the backend, then
// downloads and validates the HTML document itself
func (c *CatalogClient) FetchViewerHTML(ctx context.Context) ([]byte, error) {
	value, err := c.FetchField(ctx, viewerURLField)
	if err != nil {
		return nil, err
	}

	var viewerURL string
	if err := json.Unmarshal(value, &viewerURL); err != nil {
		return nil, &ParseError{Op: "fetch viewer url", Err: err}
	}

	// Share links serve a preview page, not the artifact itself
	downloadURL := utils.RewriteDownloadURL(viewerURL)
	log.Printf("📥 Downloading viewer HTML from %s", downloadURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, &NetworkError{Op: "download viewer html", Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: "download viewer html", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &NetworkError{Op: "download viewer html", Err: fmt.Errorf("viewer host returned status %d", resp.StatusCode)}
	}

	html, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: "download viewer html", Err: err}
	}

	if err := validateViewerHTML(html); err != nil {
		return nil, &ParseError{Op: "validate viewer html", Err: err}
	}
	return html, nil
}

// validateViewerHTML rejects documents that are not a usable viewer page.
// Captive portals and expired share links answer 200 with junk, and a
// poisoned html/ cache slot would break every offline load afterwards.
func validateViewerHTML(html []byte) error {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return err
	}
	body := doc.Find("body")
	if body.Length() == 0 || strings.TrimSpace(body.Text()) == "" && body.Children().Length() == 0 {
		return fmt.Errorf("document has no usable body")
	}
	return nil
}
