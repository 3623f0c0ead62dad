// File: internal/session/store.go
package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ehc-io/xmedia-downloader/internal/storage"
)

// Store locates, loads, and persists the serialized session artifact. The
// durable blob store is the source of truth shared across process instances;
// the local file is a read-through cache.
type Store struct {
	dir      string
	fileName string
	blobKey  string
	blobs    storage.BlobStore
	log      *zap.Logger
}

// NewStore builds a Store for the configured session directory and blob key.
func NewStore(dir, fileName, blobKey string, blobs storage.BlobStore, logger *zap.Logger) *Store {
	return &Store{
		dir:      dir,
		fileName: fileName,
		blobKey:  blobKey,
		blobs:    blobs,
		log:      logger.Named("session_store"),
	}
}

// Path returns the local path of the session artifact.
func (s *Store) Path() string {
	return filepath.Join(s.dir, s.fileName)
}

// EnsureLocal makes sure a session artifact is present locally, pulling it
// from the blob store if needed. Returns false (with nil error) when no
// artifact exists anywhere; any store I/O failure is an error, which callers
// must treat as "session unavailable", not "session invalid".
func (s *Store) EnsureLocal(ctx context.Context) (bool, error) {
	path := s.Path()
	if _, err := os.Stat(path); err == nil {
		return true, nil
	}

	s.log.Info("Local session artifact absent, checking blob store.", zap.String("key", s.blobKey))
	exists, err := s.blobs.Exists(ctx, s.blobKey)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !exists {
		s.log.Info("Session artifact does not exist in the blob store either.")
		return false, nil
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return false, fmt.Errorf("%w: failed to create session directory: %v", ErrUnavailable, err)
	}
	if err := s.blobs.Download(ctx, s.blobKey, path); err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return true, nil
}

// Invalidate drops the local cache so the next EnsureLocal re-fetches from the
// durable store. Used after a refresh (the agent writes the new artifact to
// the blob store, not to our local path) and by the forced-refresh endpoint.
func (s *Store) Invalidate() error {
	err := os.Remove(s.Path())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove local session artifact: %w", err)
	}
	return nil
}

// Identity returns a token identifying the current artifact revision
// (path plus modification time). A refresh rewrites the file, so cached
// credentials keyed by this value invalidate naturally.
func (s *Store) Identity() (string, error) {
	info, err := os.Stat(s.Path())
	if err != nil {
		return "", fmt.Errorf("failed to stat session artifact: %w", err)
	}
	return fmt.Sprintf("%s@%d", s.Path(), info.ModTime().UnixNano()), nil
}
