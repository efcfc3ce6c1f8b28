// Package internal is code only for consumption from within the cams project.
package internal

import (
	"math/rand"
	"time"
)

var (
	// Version is the cams version, set at link time.
	Version = "unknown"
	// Commit is the git commit cams was built from, set at link time.
	Commit = "unknown"
)

// Base58 is the alphabet used for generated identifiers. It omits characters
// that are easily confused with one another (0, O, I, l).
const Base58 = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// GenerateRandomString generates a random string of the given size using
// characters from the base58 alphabet.
func GenerateRandomString(size int) string {
	buf := make([]byte, size)
	for i := 0; i < size; i++ {
		buf[i] = Base58[rand.Intn(len(Base58))]
	}
	return string(buf)
}

// CurrentTimestamp is *the* way to get a current timestamp in cams, and
// time.Now() should be avoided.
//
// Timestamps are rounded to the nearest millisecond so that they can be
// persisted and serialised without losing precision, making comparisons in
// tests easier. They are also in the UTC time zone: testify compares times
// with DeepEqual rather than time.Equal, so the internal representation
// matters, including the zone.
func CurrentTimestamp() time.Time {
	return time.Now().Round(time.Millisecond).UTC()
}

// String returns a pointer to a string.
func String(s string) *string { return &s }
