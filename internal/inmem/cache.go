// Package inmem provides in-memory implementations of collaborating services.
package inmem

import (
	"time"

	"github.com/allegro/bigcache"
)

// DefaultCacheTTL is the default time-to-live for cached entries.
const DefaultCacheTTL = 10 * time.Minute

type (
	// Cache is an in-memory cache for rendered views, keyed by route. A
	// mutation invalidates the stale route; expiry otherwise reclaims
	// entries.
	Cache struct {
		*bigcache.BigCache
	}

	CacheConfig struct {
		// Size is the maximum size of the cache in MB. 0 means unlimited.
		Size int
		// TTL is the time-to-live for cached entries.
		TTL time.Duration
	}
)

func NewCache(config CacheConfig) (*Cache, error) {
	defaults := bigcache.DefaultConfig(DefaultCacheTTL)

	if config.TTL != 0 {
		defaults.LifeWindow = config.TTL
	}

	if config.Size != 0 {
		defaults.HardMaxCacheSize = config.Size / defaults.Shards
	}

	cache, err := bigcache.NewBigCache(defaults)
	if err != nil {
		return nil, err
	}

	return &Cache{BigCache: cache}, nil
}

// Invalidate removes the entry for the given route. Invalidating a route that
// is not cached is not an error.
func (c *Cache) Invalidate(route string) error {
	if err := c.Delete(route); err != nil && err != bigcache.ErrEntryNotFound {
		return err
	}
	return nil
}
