// File: internal/credentials/cache.go
package credentials

import (
	"sync"

	"go.uber.org/zap"
)

// Cache holds extracted bundles in memory, keyed by session identity, for the
// process's lifetime. It is an explicit injectable object rather than package
// state so tests can substitute their own instance. Bundles are reused across
// requests until a fetch fails with an authentication-class error, at which
// point the caller invalidates the entry and the next use re-extracts.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Bundle
	log     *zap.Logger
}

// NewCache creates an empty credential cache.
func NewCache(logger *zap.Logger) *Cache {
	return &Cache{
		entries: make(map[string]Bundle),
		log:     logger.Named("credential_cache"),
	}
}

// Get returns the cached bundle for the given session identity, if any.
func (c *Cache) Get(identity string) (Bundle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.entries[identity]
	return b, ok
}

// Put stores a bundle for the given session identity.
func (c *Cache) Put(identity string, b Bundle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[identity] = b
}

// Invalidate drops the bundle for the given session identity.
func (c *Cache) Invalidate(identity string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[identity]; ok {
		delete(c.entries, identity)
		c.log.Info("Invalidated cached credentials.", zap.String("identity", identity))
	}
}

// Clear drops all cached bundles. Used by the forced-refresh path.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Bundle)
}
