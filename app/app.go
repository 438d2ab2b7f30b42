package app

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"flipbook-cache/app/controller"
	"flipbook-cache/app/router"
	"flipbook-cache/fs"
	"flipbook-cache/service"
)

// Initialize constructs every service once and wires them together.
// Services hold no package-level state; everything is injected here.
func Initialize() error {
	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		return fmt.Errorf("API_URL environment variable is not set")
	}
	apiKey := os.Getenv("API_KEY")
	apiToken := os.Getenv("API_TOKEN")
	if apiKey == "" || apiToken == "" {
		return fmt.Errorf("API_KEY and API_TOKEN environment variables must be set")
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		baseURL = "http://localhost:" + port
	}

	probeTimeout := service.DefaultProbeTimeout
	if raw := os.Getenv("PROBE_TIMEOUT_SECONDS"); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			probeTimeout = time.Duration(seconds) * time.Second
		} else {
			log.Printf("⚠️  Invalid PROBE_TIMEOUT_SECONDS %q, using default %s", raw, service.DefaultProbeTimeout)
		}
	}

	// Local store over the real filesystem
	storeService := service.NewStoreService(fs.NewOSFilesystem(), dataDir)
	if err := storeService.EnsureLayout(); err != nil {
		// Not fatal here: the load flow degrades to cache-only mode when
		// a previous snapshot exists and fails cleanly when it does not
		log.Printf("⚠️  Could not prepare storage layout: %v", err)
	}

	// Connectivity oracle probing the backend itself
	connectivityService := service.NewConnectivityService(service.NewInterfaceNetStatus(), apiURL, probeTimeout)

	// Remote catalog client
	catalogClient := service.NewCatalogClient(apiURL, apiKey, apiToken)

	// Transport: plain HTTP, routed through the Drive API when a service
	// account is configured
	httpDownloader := service.NewHTTPDownloader(storeService, os.Getenv("OPTIMIZE_IMAGES") == "true")
	var downloader service.Downloader = httpDownloader
	if credentialsPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credentialsPath != "" {
		driveService, err := service.NewDriveService(credentialsPath)
		if err != nil {
			log.Printf("⚠️  Drive service unavailable, using direct downloads: %v", err)
		} else {
			log.Printf("✓ Drive API transport enabled")
			downloader = service.NewDriveDownloader(driveService, httpDownloader)
		}
	}

	// Media synchronizer
	syncService := service.NewMediaSyncService(storeService, downloader)

	// Embedded viewer renderer
	rendererService := service.NewRendererService(baseURL)

	// Viewer load orchestration
	viewerService := service.NewViewerService(storeService, connectivityService, catalogClient, syncService, rendererService)

	// Create controllers
	controllers := &router.Controllers{
		Viewer: controller.NewViewerController(viewerService, storeService, syncService, rendererService),
		Media:  controller.NewMediaController(storeService),
	}

	// Setup routes using standard http router
	router.SetupRoutes(controllers)

	return nil
}
