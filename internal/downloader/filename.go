// File: internal/downloader/filename.go
package downloader

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var unsafeChars = regexp.MustCompile(`[^a-z0-9_]+`)

// sanitize lowercases a name component and collapses anything outside
// [a-z0-9_] into underscores.
func sanitize(component string) string {
	cleaned := unsafeChars.ReplaceAllString(strings.ToLower(component), "_")
	cleaned = strings.Trim(cleaned, "_")
	if cleaned == "" {
		return "unknown"
	}
	return cleaned
}

// Filename builds the canonical media file name:
// <YYYYMMDD_HHMMSS>_<handle>_<postID>_<index>.<ext>. A zero timestamp uses
// the current time so files still sort sensibly.
func Filename(ts time.Time, handle, postID string, index int, extension string) string {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return fmt.Sprintf("%s_%s_%s_%d.%s",
		ts.UTC().Format("20060102_150405"),
		sanitize(handle),
		sanitize(postID),
		index,
		extension,
	)
}
