package blob

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/mjgale/cams/internal"
)

// length of the random token in a generated key; 16 base58 characters carry
// well over 64 bits of entropy, so collisions are not a practical concern.
const keyTokenLength = 16

// NewKey generates a collision-resistant blob key from the original filename,
// of the form <timestamp>_<random token>.<extension>. The original filename
// contributes only its extension; keys are never reused.
func NewKey(filename string) string {
	key := fmt.Sprintf("%d_%s", time.Now().UnixNano(), internal.GenerateRandomString(keyTokenLength))
	if ext := path.Ext(filename); ext != "" {
		key += ext
	}
	return key
}

// KeyFromURL extracts the blob key from a stored public URL: the final
// segment of the URL's path. A malformed or empty URL yields "" rather than
// an error, since the caller treats "no key" as nothing to delete.
func KeyFromURL(s string) string {
	if s == "" {
		return ""
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	key := path.Base(u.Path)
	if key == "." || key == "/" {
		return ""
	}
	return key
}

// KeyExt returns the extension of a blob key, without the leading dot.
func KeyExt(key string) string {
	return strings.TrimPrefix(path.Ext(key), ".")
}
