// File: internal/session/store_test.go
package session_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehc-io/xmedia-downloader/internal/session"
)

func TestEnsureLocalPrefersLocalFile(t *testing.T) {
	blobs := newFakeBlobStore()
	store := newTestStore(t, blobs)

	require.NoError(t, os.WriteFile(store.Path(), []byte(`local`), 0o644))

	present, err := store.EnsureLocal(context.Background())
	require.NoError(t, err)
	assert.True(t, present)

	// The local copy is not overwritten by the (absent) blob.
	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, "local", string(data))
}

func TestEnsureLocalDownloadsFromBlobStore(t *testing.T) {
	blobs := newFakeBlobStore()
	blobs.objects[blobKey] = []byte(`remote`)
	store := newTestStore(t, blobs)

	present, err := store.EnsureLocal(context.Background())
	require.NoError(t, err)
	assert.True(t, present)

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Equal(t, "remote", string(data))
}

func TestEnsureLocalAbsentEverywhere(t *testing.T) {
	blobs := newFakeBlobStore()
	store := newTestStore(t, blobs)

	present, err := store.EnsureLocal(context.Background())
	require.NoError(t, err, "a missing artifact is not an error")
	assert.False(t, present)
}

func TestEnsureLocalWrapsStoreFailures(t *testing.T) {
	blobs := newFakeBlobStore()
	blobs.existsErr = assert.AnError
	store := newTestStore(t, blobs)

	_, err := store.EnsureLocal(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, session.ErrUnavailable)
}

func TestInvalidateRemovesLocalCopy(t *testing.T) {
	blobs := newFakeBlobStore()
	store := newTestStore(t, blobs)

	require.NoError(t, os.WriteFile(store.Path(), []byte(`x`), 0o644))
	require.NoError(t, store.Invalidate())

	_, err := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err))

	// Invalidating an already-absent artifact is fine.
	assert.NoError(t, store.Invalidate())
}

func TestIdentityChangesWhenArtifactIsRewritten(t *testing.T) {
	blobs := newFakeBlobStore()
	store := newTestStore(t, blobs)

	require.NoError(t, os.WriteFile(store.Path(), []byte(`one`), 0o644))
	first, err := store.Identity()
	require.NoError(t, err)

	// Force a distinct mtime; file systems may have coarse resolution.
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(store.Path(), future, future))

	second, err := store.Identity()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestIdentityErrorsWithoutArtifact(t *testing.T) {
	blobs := newFakeBlobStore()
	store := newTestStore(t, blobs)

	_, err := store.Identity()
	assert.Error(t, err)
}
