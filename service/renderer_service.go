package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"flipbook-cache/models"
)

// RendererService drives the embedded viewer: an isolated browser context
// with no access to the host's filesystem or network capabilities beyond
// the shell's HTTP surface. Catalog data is handed over by a structured
// message after the page signals it has loaded; the page never reaches
// back into the host.
// Implements RendererServiceInterface
type RendererService struct {
	baseURL string
}

// NewRendererService creates a new RendererService
// baseURL is the shell's own address (e.g. "http://localhost:8080")
func NewRendererService(baseURL string) *RendererService {
	return &RendererService{
		baseURL: baseURL,
	}
}

// Ensure RendererService implements RendererServiceInterface
var _ RendererServiceInterface = (*RendererService)(nil)

// detectChromePath detects the path to Chrome/Chromium executable
// Checks CHROME_PATH env var first, then common installation paths
func detectChromePath() string {
	// Check environment variable first
	if chromePath := os.Getenv("CHROME_PATH"); chromePath != "" {
		if _, err := os.Stat(chromePath); err == nil {
			return chromePath
		}
	}

	// Common paths to check
	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// newBrowserContext builds an isolated chromedp context
func (s *RendererService) newBrowserContext(ctx context.Context) (context.Context, context.CancelFunc, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // Required for running in Docker/containers
	)
	if chromePath := detectChromePath(); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	return browserCtx, browserCancel, allocCancel
}

// injectCatalog posts the catalog payload into the loaded page. The page
// listens for a "catalog" message; template splicing and blob/data URLs
// were rejected because large video references exceed data-URL limits.
func injectCatalog(catalog *models.Catalog) (chromedp.Action, error) {
	payload, err := catalog.Encode()
	if err != nil {
		return nil, err
	}
	script := fmt.Sprintf(`window.postMessage({ type: "catalog", payload: %s }, "*");`, payload)
	return chromedp.Evaluate(script, nil), nil
}

// RenderViewer displays the cached viewer page with the rewritten catalog
func (s *RendererService) RenderViewer(ctx context.Context, catalog *models.Catalog) error {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	browserCtx, browserCancel, allocCancel := s.newBrowserContext(ctx)
	defer allocCancel()
	defer browserCancel()

	inject, err := injectCatalog(catalog)
	if err != nil {
		return fmt.Errorf("failed to prepare catalog payload: %w", err)
	}

	renderURL := fmt.Sprintf("%s/viewer/render", s.baseURL)
	log.Printf("🖥️  Rendering viewer at %s", renderURL)

	err = chromedp.Run(browserCtx,
		chromedp.Navigate(renderURL),
		chromedp.WaitReady("body"),
		inject,
		// Let the page consume the message and settle its layout
		chromedp.Sleep(1500*time.Millisecond),
	)
	if err != nil {
		return fmt.Errorf("failed to render viewer: %w", err)
	}

	log.Printf("✓ Viewer rendered")
	return nil
}

// GeneratePreviewPDF renders the viewer and returns a PDF snapshot
func (s *RendererService) GeneratePreviewPDF(ctx context.Context, catalog *models.Catalog) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	browserCtx, browserCancel, allocCancel := s.newBrowserContext(ctx)
	defer allocCancel()
	defer browserCancel()

	inject, err := injectCatalog(catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare catalog payload: %w", err)
	}

	renderURL := fmt.Sprintf("%s/viewer/render", s.baseURL)

	var pdfBuf []byte
	err = chromedp.Run(browserCtx,
		chromedp.EmulateViewport(794, 1323),
		chromedp.Navigate(renderURL),
		chromedp.WaitReady("body"),
		inject,
		chromedp.Sleep(2000*time.Millisecond), // Wait for images and layout
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate preview PDF: %w", err)
	}

	return pdfBuf, nil
}
