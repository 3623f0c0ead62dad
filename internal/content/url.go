// File: internal/content/url.go
package content

import "regexp"

var (
	postURLPattern = regexp.MustCompile(`^https?://(www\.)?(twitter|x)\.com/[A-Za-z0-9_]+/status(es)?/\d+`)
	postIDPattern  = regexp.MustCompile(`/status(?:es)?/(\d+)`)
)

// ValidPostURL reports whether the URL points at a single post on the
// platform. Query strings and trailing path segments after the numeric ID
// are tolerated.
func ValidPostURL(rawURL string) bool {
	return postURLPattern.MatchString(rawURL)
}

// PostIDFromURL extracts the numeric post ID from a post URL. It returns
// an empty string when the URL carries no recognizable ID.
func PostIDFromURL(rawURL string) string {
	m := postIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return ""
	}
	return m[1]
}
