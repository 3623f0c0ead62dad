// File: internal/storage/noop.go
package storage

import (
	"context"
	"fmt"
)

// NullStore is the BlobStore used when no bucket is configured. Reads
// report absence and writes are silently dropped, so the application runs
// purely on local files.
type NullStore struct{}

func NewNullStore() *NullStore { return &NullStore{} }

func (*NullStore) Exists(ctx context.Context, key string) (bool, error) {
	return false, nil
}

func (*NullStore) Download(ctx context.Context, key, localPath string) error {
	return fmt.Errorf("no blob store configured, cannot download %s", key)
}

func (*NullStore) Upload(ctx context.Context, localPath, key string) error {
	return nil
}

func (*NullStore) UploadString(ctx context.Context, data []byte, key string) error {
	return nil
}
