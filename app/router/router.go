package router

import (
	"net/http"

	"flipbook-cache/app/controller"
)

type Controllers struct {
	Viewer *controller.ViewerController
	Media  *controller.MediaController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func SetupRoutes(controllers *Controllers) {
	// Ping endpoint
	http.HandleFunc("/ping", pingHandler)

	// Viewer load flow
	http.HandleFunc("/viewer/load", controllers.Viewer.LoadViewer)
	http.HandleFunc("/viewer/status", controllers.Viewer.GetStatus)
	http.HandleFunc("/viewer/retry", controllers.Viewer.Retry)

	// Cached viewer page (the embedded browser context navigates here)
	http.HandleFunc("/viewer/render", controllers.Viewer.RenderViewer)

	// Rendered preview export
	http.HandleFunc("/viewer/preview.pdf", controllers.Viewer.PreviewPDF)

	// Stored media files referenced by the rewritten catalog
	http.HandleFunc("/media/", controllers.Media.ServeMedia)
}
