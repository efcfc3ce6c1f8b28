package blob

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey(t *testing.T) {
	t.Run("keeps extension", func(t *testing.T) {
		key := NewKey("avatar.png")
		assert.True(t, strings.HasSuffix(key, ".png"), key)

		timestamp, rest, found := strings.Cut(key, "_")
		require.True(t, found, key)
		assert.NotEmpty(t, timestamp)
		assert.Len(t, strings.TrimSuffix(rest, ".png"), keyTokenLength)
	})

	t.Run("no extension", func(t *testing.T) {
		key := NewKey("avatar")
		assert.NotContains(t, key, ".")
	})

	t.Run("unique across invocations", func(t *testing.T) {
		seen := make(map[string]struct{})
		for i := 0; i < 100; i++ {
			key := NewKey("a.jpg")
			_, dup := seen[key]
			require.False(t, dup, key)
			seen[key] = struct{}{}
		}
	})
}

func TestKeyFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"s3 virtual-hosted url", "https://images.s3.eu-west-2.amazonaws.com/1712_abc.png", "1712_abc.png"},
		{"path-style url", "http://localhost:9000/images/1712_abc.png", "1712_abc.png"},
		{"empty", "", ""},
		{"no path", "https://example.com", ""},
		{"root path", "https://example.com/", ""},
		{"malformed", "://nope", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KeyFromURL(tt.url))
		})
	}
}

func TestKeyExt(t *testing.T) {
	assert.Equal(t, "png", KeyExt("1712_abc.png"))
	assert.Equal(t, "", KeyExt("1712_abc"))
}
