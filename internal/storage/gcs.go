// File: internal/storage/gcs.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
)

// GCSStore implements BlobStore on top of a Google Cloud Storage bucket.
type GCSStore struct {
	bucket *storage.BucketHandle
	name   string
	log    *zap.Logger
}

var _ BlobStore = (*GCSStore)(nil)

// NewGCSStore creates a store bound to the named bucket, using application
// default credentials.
func NewGCSStore(ctx context.Context, bucketName string, logger *zap.Logger) (*GCSStore, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("bucket name is required (set storage.bucket or GCS_BUCKET_NAME)")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &GCSStore{
		bucket: client.Bucket(bucketName),
		name:   bucketName,
		log:    logger.Named("gcs"),
	}, nil
}

// BucketName returns the bound bucket's name, for log/diagnostic labeling.
func (s *GCSStore) BucketName() string { return s.name }

// Exists reports whether an object exists under the given key.
func (s *GCSStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.bucket.Object(key).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat gs://%s/%s: %w", s.name, key, err)
	}
	return true, nil
}

// Download copies an object to a local file, creating parent directories.
func (s *GCSStore) Download(ctx context.Context, key, localPath string) error {
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", localPath, err)
	}

	r, err := s.bucket.Object(key).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("failed to open gs://%s/%s: %w", s.name, key, err)
	}
	defer r.Close()

	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", localPath, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("failed to write %s: %w", localPath, err)
	}

	s.log.Info("Downloaded blob.", zap.String("key", key), zap.String("path", localPath))
	return nil
}

// Upload copies a local file into the bucket under the given key.
func (s *GCSStore) Upload(ctx context.Context, localPath, key string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer f.Close()

	w := s.bucket.Object(key).NewWriter(ctx)
	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return fmt.Errorf("failed to upload to gs://%s/%s: %w", s.name, key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize gs://%s/%s: %w", s.name, key, err)
	}

	s.log.Info("Uploaded blob.", zap.String("path", localPath), zap.String("key", key))
	return nil
}

// UploadString writes raw bytes into the bucket under the given key.
func (s *GCSStore) UploadString(ctx context.Context, data []byte, key string) error {
	w := s.bucket.Object(key).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("failed to upload to gs://%s/%s: %w", s.name, key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize gs://%s/%s: %w", s.name, key, err)
	}
	return nil
}
