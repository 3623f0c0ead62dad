// File: internal/browser/artifact_test.go
package browser_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehc-io/xmedia-downloader/internal/browser"
)

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "x-session.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadArtifact(t *testing.T) {
	path := writeArtifact(t, `{
		"cookies": [
			{"name": "auth_token", "value": "abc", "domain": ".x.com", "path": "/", "expires": 1893456000, "httpOnly": true, "secure": true, "sameSite": "None"},
			{"name": "ct0", "value": "def", "domain": ".x.com", "path": "/"}
		],
		"origins": [
			{"origin": "https://x.com", "localStorage": [{"name": "device_id", "value": "xyz"}]}
		]
	}`)

	a, err := browser.LoadArtifact(path)
	require.NoError(t, err)
	require.Len(t, a.Cookies, 2)
	assert.Equal(t, "auth_token", a.Cookies[0].Name)
	assert.True(t, a.Cookies[0].HTTPOnly)
	assert.Equal(t, "None", a.Cookies[0].SameSite)
	require.Len(t, a.Origins, 1)
	assert.Equal(t, "https://x.com", a.Origins[0].Origin)
	require.Len(t, a.Origins[0].LocalStorage, 1)
	assert.Equal(t, "device_id", a.Origins[0].LocalStorage[0].Name)
}

func TestLoadArtifactRejectsEmptyCookieJar(t *testing.T) {
	path := writeArtifact(t, `{"cookies": [], "origins": []}`)
	_, err := browser.LoadArtifact(path)
	assert.ErrorContains(t, err, "no cookies")
}

func TestLoadArtifactRejectsMalformedJSON(t *testing.T) {
	path := writeArtifact(t, `{not json`)
	_, err := browser.LoadArtifact(path)
	assert.ErrorContains(t, err, "failed to parse")
}

func TestLoadArtifactMissingFile(t *testing.T) {
	_, err := browser.LoadArtifact(filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorContains(t, err, "failed to read")
}
