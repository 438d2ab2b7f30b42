package models

// Folder is a fixed subfolder of the local storage root
type Folder string

const (
	FolderHTML   Folder = "html"
	FolderJSON   Folder = "json"
	FolderImages Folder = "images"
	FolderVideos Folder = "videos"
)

// MediaFolders are the folders that hold downloaded media and are subject
// to the orphan cleanup pass
var MediaFolders = []Folder{FolderImages, FolderVideos}

// MediaKey identifies one physical media resource during extraction.
// Keying by (URL, folder) instead of URL alone means a URL reused as both
// an image and a video is downloaded once per role, which trades a
// duplicate download for unambiguous folder assignment.
type MediaKey struct {
	URL    string
	Folder Folder
}

// MediaRecord maps one remote catalog reference to its local storage slot
type MediaRecord struct {
	RemoteURL   string `json:"remoteUrl"`
	Folder      Folder `json:"folder"`
	FileName    string `json:"fileName"`
	DownloadURL string `json:"downloadUrl"` // RemoteURL rewritten for direct download (Drive share links)
}
