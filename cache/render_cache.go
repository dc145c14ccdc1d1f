// Package cache holds compiled artifacts in front of the component store so
// frequently rendered block kinds do not hit the database on every request.
package cache

import (
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"proposal-cms/models"
)

// RenderCache is a TTL key-value cache owned by the service instance.
// Entries expire a fixed interval after insertion regardless of access, so
// staleness is bounded even for hot keys. There is no negative caching: a
// miss always falls through to storage.
type RenderCache struct {
	ttl   time.Duration
	store *gocache.Cache
}

func NewRenderCache(ttl time.Duration) *RenderCache {
	return &RenderCache{
		ttl:   ttl,
		store: gocache.New(ttl, ttl),
	}
}

// Key builds the cache key for a block kind, scoped to a proposal's own
// binding when one exists so a customized document is never served another
// document's artifact.
func Key(blockKind string, bindingID uint) string {
	if bindingID > 0 {
		return blockKind + ":" + strconv.FormatUint(uint64(bindingID), 10)
	}
	return blockKind
}

func (c *RenderCache) Get(key string) (*models.CompiledArtifact, bool) {
	value, found := c.store.Get(key)
	if !found {
		return nil, false
	}
	artifact, ok := value.(*models.CompiledArtifact)
	if !ok {
		return nil, false
	}
	return artifact, true
}

func (c *RenderCache) Put(key string, artifact *models.CompiledArtifact) {
	c.store.Set(key, artifact, c.ttl)
}

func (c *RenderCache) Invalidate(key string) {
	c.store.Delete(key)
}

func (c *RenderCache) InvalidateAll() {
	c.store.Flush()
}
