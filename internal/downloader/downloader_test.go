// File: internal/downloader/downloader_test.go
package downloader_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ehc-io/xmedia-downloader/internal/content"
	"github.com/ehc-io/xmedia-downloader/internal/downloader"
	"github.com/ehc-io/xmedia-downloader/internal/xapi"
)

func testMetadata() content.Metadata {
	return content.Metadata{
		PostID:    "111",
		Handle:    "someuser",
		Timestamp: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestDownloadAllWritesFiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a.jpg":
			w.Write([]byte("image-bytes"))
		case "/b.mp4":
			w.Write([]byte("video-bytes"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	dir := t.TempDir()
	d := downloader.New(server.Client(), dir, nil, false, zap.NewNop())

	items := []xapi.Media{
		{Type: xapi.MediaPhoto, Index: 0, URL: server.URL + "/a.jpg", Extension: "jpg"},
		{Type: xapi.MediaVideo, Index: 1, URL: server.URL + "/b.mp4", Extension: "mp4"},
	}

	results, err := d.DownloadAll(context.Background(), testMetadata(), items)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, res := range results {
		require.NoError(t, res.Err)
		data, err := os.ReadFile(res.Path)
		require.NoError(t, err)
		assert.NotEmpty(t, data)
	}

	assert.Equal(t, filepath.Join(dir, "20240601_120000_someuser_111_0.jpg"), results[0].Path)
	assert.Equal(t, filepath.Join(dir, "20240601_120000_someuser_111_1.mp4"), results[1].Path)
}

func TestDownloadAllAbsorbsPerItemFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/good.jpg" {
			w.Write([]byte("ok"))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	dir := t.TempDir()
	d := downloader.New(server.Client(), dir, nil, false, zap.NewNop())

	items := []xapi.Media{
		{Type: xapi.MediaPhoto, Index: 0, URL: server.URL + "/missing.jpg", Extension: "jpg"},
		{Type: xapi.MediaPhoto, Index: 1, URL: server.URL + "/good.jpg", Extension: "jpg"},
	}

	results, err := d.DownloadAll(context.Background(), testMetadata(), items)
	require.NoError(t, err, "one bad item must not abort the batch")
	require.Len(t, results, 2)

	assert.Error(t, results[0].Err)
	assert.Empty(t, results[0].Path)
	assert.NoError(t, results[1].Err)
	assert.FileExists(t, results[1].Path)
}

func TestDownloadAllEmptyInput(t *testing.T) {
	d := downloader.New(http.DefaultClient, t.TempDir(), nil, false, zap.NewNop())
	results, err := d.DownloadAll(context.Background(), testMetadata(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}
