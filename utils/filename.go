package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"flipbook-cache/models"
)

// Known media extensions, kept when present in the URL path
var knownExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".mp4":  true,
	".mov":  true,
	".webm": true,
	".m4v":  true,
}

var (
	drivePathIDRegex   = regexp.MustCompile(`^/file/d/([a-zA-Z0-9_-]+)`)
	prefixCleanupRegex = regexp.MustCompile(`[^a-z0-9_-]+`)
)

const driveHost = "drive.google.com"

// DriveFileID extracts the embedded file identifier from a Google Drive
// URL. Supported shapes:
//
//	https://drive.google.com/file/d/<ID>/view?usp=sharing
//	https://drive.google.com/open?id=<ID>
//	https://drive.google.com/uc?id=<ID>
//
// Returns false for anything that is not a Drive URL.
func DriveFileID(rawURL string) (string, bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil || !strings.EqualFold(parsed.Hostname(), driveHost) {
		return "", false
	}
	if matches := drivePathIDRegex.FindStringSubmatch(parsed.Path); len(matches) == 2 {
		return matches[1], true
	}
	if id := parsed.Query().Get("id"); id != "" {
		return id, true
	}
	return "", false
}

// RewriteDownloadURL rewrites a Drive sharing link into its
// direct-download form; non-Drive URLs pass through unchanged. Sharing
// links serve an HTML preview page, so fetching them verbatim would cache
// markup instead of media bytes.
func RewriteDownloadURL(rawURL string) string {
	fileID, ok := DriveFileID(rawURL)
	if !ok {
		return rawURL
	}
	return fmt.Sprintf("https://%s/uc?export=download&id=%s", driveHost, fileID)
}

// DeriveFilename derives the local filename for a remote media URL:
// a human-readable prefix (style code or collection key) for traceability,
// a disambiguating token, and an inferred extension. Same URL always
// yields the same name; different URLs collide only if SHA-256 does.
//
// Drive URLs use the provider's embedded file ID as the token, since the
// path structure already guarantees uniqueness; everything else gets a
// short hash of the full URL.
func DeriveFilename(prefix, rawURL string, folder models.Folder) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse media url %q: %w", rawURL, err)
	}
	if parsed.Hostname() == "" {
		return "", fmt.Errorf("media url %q has no host", rawURL)
	}

	token, isDrive := DriveFileID(rawURL)
	if !isDrive {
		sum := sha256.Sum256([]byte(rawURL))
		token = hex.EncodeToString(sum[:])[:10]
	}

	return sanitizePrefix(prefix) + "_" + token + inferExtension(parsed, folder), nil
}

// SyntheticFilename is the fallback when derivation fails: unique by
// timestamp rather than deterministic, so a malformed URL still gets a
// storage slot instead of aborting the pass.
func SyntheticFilename(prefix string, folder models.Folder) string {
	return fmt.Sprintf("%s_fallback_%d%s", sanitizePrefix(prefix), time.Now().UnixNano(), defaultExtension(folder))
}

func sanitizePrefix(prefix string) string {
	cleaned := prefixCleanupRegex.ReplaceAllString(strings.ToLower(prefix), "")
	if cleaned == "" {
		cleaned = "media"
	}
	return cleaned
}

func inferExtension(parsed *url.URL, folder models.Folder) string {
	// Explicit extension in the path wins
	if ext := strings.ToLower(path.Ext(parsed.Path)); knownExtensions[ext] {
		return ext
	}
	// Drive links carry no extension; the export endpoint serves the
	// original bytes, so fall through to the folder default
	return defaultExtension(folder)
}

func defaultExtension(folder models.Folder) string {
	if folder == models.FolderVideos {
		return ".mp4"
	}
	return ".jpg"
}
