// File: internal/credentials/extractor_test.go
package credentials

import (
	"testing"

	cdpnetwork "github.com/chromedp/cdproto/network"
	"github.com/stretchr/testify/assert"
)

func TestIsAPIRequest(t *testing.T) {
	matching := []string{
		"https://api.twitter.com/1.1/some/endpoint",
		"https://twitter.com/i/api/graphql/abc/Something",
		"https://x.com/i/api/graphql/abc/Something",
	}
	for _, u := range matching {
		assert.True(t, isAPIRequest(u), u)
	}

	nonMatching := []string{
		"https://x.com/home",
		"https://pbs.twimg.com/media/abc.jpg",
		"https://example.com/i/api/thing",
	}
	for _, u := range nonMatching {
		assert.False(t, isAPIRequest(u), u)
	}
}

func TestHeaderValueCaseInsensitive(t *testing.T) {
	headers := cdpnetwork.Headers{
		"authorization": "Bearer AAAAtoken",
		"X-Other":       "value",
		"Count":         float64(3), // CDP headers can carry non-string values
	}

	assert.Equal(t, "Bearer AAAAtoken", headerValue(headers, "Authorization"))
	assert.Equal(t, "value", headerValue(headers, "x-other"))
	assert.Empty(t, headerValue(headers, "Count"))
	assert.Empty(t, headerValue(headers, "Missing"))
}

func TestTokenPrefixTruncates(t *testing.T) {
	assert.Equal(t, "short", tokenPrefix("short"))
	long := "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	assert.Equal(t, "AAAAAAAAAAAAAAAAAAAA...", tokenPrefix(long))
}
