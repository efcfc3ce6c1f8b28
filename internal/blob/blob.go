// Package blob provides clients for the external object store holding
// customer image assets.
package blob

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a blob with the given key does not exist in
// the store.
var ErrNotFound = errors.New("blob not found")

// Store is a named-blob object store scoped to a single logical bucket. Each
// operation is a single blocking call with no implicit retry.
type Store interface {
	// Put creates a blob with the given key. Putting to an existing key
	// overwrites it; generated keys are never reused so this does not arise
	// in practice.
	Put(ctx context.Context, key string, data []byte) error
	// URL returns a durable public URL for a blob that must already exist.
	URL(ctx context.Context, key string) (string, error)
	// Delete removes a blob. Deleting a non-existent blob is not an error.
	Delete(ctx context.Context, key string) error
}

// StorageError is an error from the object store, recording the operation and
// key that failed.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("blob: %s %s: %s", e.Op, e.Key, e.Err.Error())
}

func (e *StorageError) Unwrap() error { return e.Err }
