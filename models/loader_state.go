package models

// LoaderState is the viewer loader's position in its load flow
type LoaderState string

const (
	StateIdle              LoaderState = "idle"
	StateCheckingLocalData LoaderState = "checking_local_data"
	StateFirstTimeDownload LoaderState = "first_time_download"
	StateVersionCheck      LoaderState = "version_check"
	StateLoadFromCache     LoaderState = "load_from_cache"
	StateRendering         LoaderState = "rendering"
	StateReady             LoaderState = "ready"
	StateError             LoaderState = "error"
)

// LoaderStatus is the shell-visible snapshot of the loader
type LoaderStatus struct {
	State     LoaderState       `json:"state"`
	Offline   bool              `json:"offline"`
	Message   string            `json:"message,omitempty"`
	LastStats *SyncStats        `json:"last_stats,omitempty"`
	Progress  *ProgressSnapshot `json:"progress,omitempty"`
}

// ProgressSnapshot is the most recent download progress observation
type ProgressSnapshot struct {
	Current  int    `json:"current"`
	Total    int    `json:"total"`
	FileName string `json:"file_name"`
}
