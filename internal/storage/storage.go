// File: internal/storage/storage.go
package storage

import "context"

// BlobStore is the capability interface for the durable object store shared
// across process instances. Keys are slash-delimited logical paths, e.g.
// "session-data/x-session.json" or "media/20250101_120000_user_1_1.jpg".
type BlobStore interface {
	Exists(ctx context.Context, key string) (bool, error)
	Download(ctx context.Context, key, localPath string) error
	Upload(ctx context.Context, localPath, key string) error
	UploadString(ctx context.Context, data []byte, key string) error
}
