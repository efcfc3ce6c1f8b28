package inmem

import (
	"testing"

	"github.com/allegro/bigcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache(t *testing.T) {
	cache, err := NewCache(CacheConfig{})
	require.NoError(t, err)

	require.NoError(t, cache.Set("/customers", []byte("listing")))

	got, err := cache.Get("/customers")
	require.NoError(t, err)
	assert.Equal(t, []byte("listing"), got)

	require.NoError(t, cache.Invalidate("/customers"))

	_, err = cache.Get("/customers")
	assert.Equal(t, bigcache.ErrEntryNotFound, err)

	// invalidating an uncached route is not an error
	require.NoError(t, cache.Invalidate("/customers"))
}
