// File: internal/downloader/downloader.go

// Package downloader fetches resolved media items to disk and optionally
// mirrors them to blob storage.
package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ehc-io/xmedia-downloader/internal/content"
	"github.com/ehc-io/xmedia-downloader/internal/storage"
	"github.com/ehc-io/xmedia-downloader/internal/xapi"
)

// blobPrefix is where mirrored media lands in the bucket.
const blobPrefix = "media/"

// Result describes the outcome for one media item.
type Result struct {
	Media xapi.Media
	Path  string
	Err   error
}

// Downloader writes media items into an output directory.
type Downloader struct {
	httpClient *http.Client
	outputDir  string
	blobs      storage.BlobStore
	upload     bool
	log        *zap.Logger
}

// New builds a downloader. blobs may be nil when uploads are disabled.
func New(httpClient *http.Client, outputDir string, blobs storage.BlobStore, upload bool, logger *zap.Logger) *Downloader {
	return &Downloader{
		httpClient: httpClient,
		outputDir:  outputDir,
		blobs:      blobs,
		upload:     upload && blobs != nil,
		log:        logger.Named("downloader"),
	}
}

// DownloadAll fetches every media item sequentially. Per-item failures are
// recorded in the results rather than aborting the batch; the returned error
// is non-nil only when nothing could be set up at all.
func (d *Downloader) DownloadAll(ctx context.Context, meta content.Metadata, items []xapi.Media) ([]Result, error) {
	if len(items) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(d.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", d.outputDir, err)
	}

	results := make([]Result, 0, len(items))
	for _, item := range items {
		name := Filename(meta.Timestamp, meta.Handle, meta.PostID, item.Index, item.Extension)
		path := filepath.Join(d.outputDir, name)

		res := Result{Media: item, Path: path}
		if err := d.downloadOne(ctx, item.URL, path); err != nil {
			d.log.Error("Media download failed.",
				zap.String("url", item.URL),
				zap.Error(err),
			)
			res.Err = err
			res.Path = ""
			results = append(results, res)
			continue
		}
		d.log.Info("Downloaded media item.",
			zap.String("type", string(item.Type)),
			zap.String("path", path),
		)

		if d.upload {
			if err := d.blobs.Upload(ctx, path, blobPrefix+name); err != nil {
				// Upload failures do not invalidate the local copy.
				d.log.Error("Blob upload failed.", zap.String("path", path), zap.Error(err))
			}
		}
		results = append(results, res)
	}
	return results, nil
}

func (d *Downloader) downloadOne(ctx context.Context, rawURL, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected download status %d for %s", resp.StatusCode, rawURL)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}
	return nil
}
