package blob

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeStore(t *testing.T) {
	ctx := context.Background()
	store := NewFakeStore()

	t.Run("put then url round-trips", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "k.png", []byte("png-bytes")))

		url, err := store.URL(ctx, "k.png")
		require.NoError(t, err)
		assert.Equal(t, "k.png", KeyFromURL(url))
	})

	t.Run("url for missing blob errors", func(t *testing.T) {
		_, err := store.URL(ctx, "missing.png")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "k.png"))
		require.NoError(t, store.Delete(ctx, "k.png"))

		_, ok := store.Get("k.png")
		assert.False(t, ok)
	})
}
