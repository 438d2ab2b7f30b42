package controller

import (
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"path"
	"strings"

	"flipbook-cache/models"
	"flipbook-cache/service"
)

// MediaController serves stored media files to the viewer page
type MediaController struct {
	storeService service.StoreServiceInterface
}

// NewMediaController creates a new MediaController
func NewMediaController(storeService service.StoreServiceInterface) *MediaController {
	return &MediaController{
		storeService: storeService,
	}
}

// ServeMedia handles GET /media/{images|videos}/{name}
func (c *MediaController) ServeMedia(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Path format: /media/{folder}/{name}
	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/media/"), "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	folder := models.Folder(parts[0])
	name := parts[1]
	if (folder != models.FolderImages && folder != models.FolderVideos) || name != path.Base(name) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	file, err := c.storeService.OpenFile(folder, name)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to open media file", http.StatusInternalServerError)
		return
	}
	defer file.Close()

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	// Videos can be large; stream instead of buffering the whole file
	if _, err := io.Copy(w, file); err != nil {
		log.Printf("⚠️  Failed streaming %s/%s: %v", folder, name, err)
	}
}
