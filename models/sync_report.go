package models

// SyncStats summarizes one media synchronization pass.
// Per-file download failures are aggregated here instead of aborting the
// batch; the pass itself only fails on pass-level errors.
type SyncStats struct {
	PassID     string   `json:"pass_id"`
	Total      int      `json:"total"`
	Downloaded int      `json:"downloaded"`
	Skipped    int      `json:"skipped"`
	Failed     int      `json:"failed"`
	Deleted    int      `json:"deleted"`
	Errors     []string `json:"errors,omitempty"`
}

// ProgressFunc observes incremental download progress (current out of
// total, plus the filename being processed). It is an observation point
// for the shell's progress display, never a control dependency.
type ProgressFunc func(current, total int, fileName string)
