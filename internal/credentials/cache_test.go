// File: internal/credentials/cache_test.go
package credentials_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/ehc-io/xmedia-downloader/internal/credentials"
)

func TestCacheRoundTrip(t *testing.T) {
	cache := credentials.NewCache(zap.NewNop())
	bundle := credentials.Bundle{AuthToken: "a", CSRFToken: "c", BearerToken: "b"}

	_, ok := cache.Get("artifact@1")
	assert.False(t, ok)

	cache.Put("artifact@1", bundle)
	got, ok := cache.Get("artifact@1")
	assert.True(t, ok)
	assert.Equal(t, bundle, got)

	// A different identity misses; modtime changes produce new keys.
	_, ok = cache.Get("artifact@2")
	assert.False(t, ok)
}

func TestCacheInvalidate(t *testing.T) {
	cache := credentials.NewCache(zap.NewNop())
	cache.Put("id", credentials.Bundle{AuthToken: "a"})

	cache.Invalidate("id")
	_, ok := cache.Get("id")
	assert.False(t, ok)

	// Invalidating an unknown key is harmless.
	cache.Invalidate("missing")
}

func TestCacheClear(t *testing.T) {
	cache := credentials.NewCache(zap.NewNop())
	cache.Put("one", credentials.Bundle{AuthToken: "a"})
	cache.Put("two", credentials.Bundle{AuthToken: "b"})

	cache.Clear()
	_, ok := cache.Get("one")
	assert.False(t, ok)
	_, ok = cache.Get("two")
	assert.False(t, ok)
}
