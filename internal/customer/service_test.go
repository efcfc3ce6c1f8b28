package customer

import (
	"context"
	"errors"
	"testing"

	"github.com/mjgale/cams/internal"
	"github.com/mjgale/cams/internal/blob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("record references an existing blob", func(t *testing.T) {
		db, store, cache := newFakeDB(), blob.NewFakeStore(), newFakeCache()
		svc := newTestService(db, store, cache)

		cust, err := svc.Create(ctx, CreateInput{
			Name:  "Ada",
			Email: "ada@x.com",
			Image: testUpload(4 * 1024),
		})
		require.NoError(t, err)

		require.NotNil(t, cust.ImageURL)
		key := blob.KeyFromURL(*cust.ImageURL)
		assert.Equal(t, "png", blob.KeyExt(key))

		// round-trip: the URL resolves to a stored blob
		data, ok := store.Get(key)
		require.True(t, ok)
		assert.Len(t, data, 4*1024)

		got, err := db.get(ctx, cust.ID)
		require.NoError(t, err)
		assert.Equal(t, cust.ImageURL, got.ImageURL)

		assert.Equal(t, 1, cache.invalidations)
	})

	t.Run("invalid input performs no writes", func(t *testing.T) {
		db, store, cache := newFakeDB(), blob.NewFakeStore(), newFakeCache()
		svc := newTestService(db, store, cache)

		_, err := svc.Create(ctx, CreateInput{
			Name:  "",
			Email: "ada@x.com",
			Image: testUpload(4 * 1024),
		})

		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.NotEmpty(t, validationErr.Errors["name"])
		assert.Zero(t, store.Len())
		assert.Empty(t, db.customers)
		assert.Zero(t, cache.invalidations)
	})

	t.Run("upload failure creates no record", func(t *testing.T) {
		db, cache := newFakeDB(), newFakeCache()
		store := &erroringStore{
			Store:  blob.NewFakeStore(),
			putErr: &blob.StorageError{Op: "put", Key: "k", Err: errors.New("unreachable")},
		}
		svc := newTestService(db, store, cache)

		_, err := svc.Create(ctx, CreateInput{Name: "Ada", Email: "ada@x.com", Image: testUpload(1)})

		var storageErr *blob.StorageError
		require.ErrorAs(t, err, &storageErr)
		assert.Empty(t, db.customers)
		assert.Zero(t, cache.invalidations)
	})

	t.Run("url failure leaves orphan but no record", func(t *testing.T) {
		db, cache := newFakeDB(), newFakeCache()
		inner := blob.NewFakeStore()
		store := &erroringStore{
			Store:  inner,
			urlErr: &blob.StorageError{Op: "url", Key: "k", Err: errors.New("cannot resolve")},
		}
		svc := newTestService(db, store, cache)

		_, err := svc.Create(ctx, CreateInput{Name: "Ada", Email: "ada@x.com", Image: testUpload(1)})

		var storageErr *blob.StorageError
		require.ErrorAs(t, err, &storageErr)
		// the uploaded blob is orphaned, not rolled back
		assert.Equal(t, 1, inner.Len())
		assert.Empty(t, db.customers)
	})

	t.Run("database failure leaves orphan blob", func(t *testing.T) {
		db, cache := newFakeDB(), newFakeCache()
		db.createErr = errors.New("connection reset")
		inner := blob.NewFakeStore()
		svc := newTestService(db, inner, cache)

		_, err := svc.Create(ctx, CreateInput{Name: "Ada", Email: "ada@x.com", Image: testUpload(1)})
		require.Error(t, err)

		assert.Equal(t, 1, inner.Len())
		assert.Empty(t, db.customers)
		assert.Zero(t, cache.invalidations)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	// creates a customer with an image and returns it along with its blob key
	setup := func(t *testing.T, db *fakeDB, store blob.Store, cache Cache) (*Service, *Customer, string) {
		svc := newTestService(db, store, cache)
		cust, err := svc.Create(ctx, CreateInput{
			Name:  "Ada",
			Email: "ada@x.com",
			Image: testUpload(4 * 1024),
		})
		require.NoError(t, err)
		return svc, cust, blob.KeyFromURL(*cust.ImageURL)
	}

	t.Run("no new image preserves reference exactly", func(t *testing.T) {
		db, store, cache := newFakeDB(), blob.NewFakeStore(), newFakeCache()
		svc, cust, oldKey := setup(t, db, store, cache)

		updated, err := svc.Update(ctx, cust.ID, UpdateInput{Name: "Ada Lovelace", Email: "ada@x.com"})
		require.NoError(t, err)

		assert.Equal(t, "Ada Lovelace", updated.Name)
		require.NotNil(t, updated.ImageURL)
		assert.Equal(t, *cust.ImageURL, *updated.ImageURL)
		_, ok := store.Get(oldKey)
		assert.True(t, ok)
	})

	t.Run("new image replaces and reclaims old blob", func(t *testing.T) {
		db, store, cache := newFakeDB(), blob.NewFakeStore(), newFakeCache()
		svc, cust, oldKey := setup(t, db, store, cache)

		updated, err := svc.Update(ctx, cust.ID, UpdateInput{
			Name:  "Ada",
			Email: "ada@x.com",
			Image: &Upload{Filename: "new.jpg", Data: []byte("jpg-bytes")},
		})
		require.NoError(t, err)

		newKey := blob.KeyFromURL(*updated.ImageURL)
		assert.NotEqual(t, oldKey, newKey)
		assert.Equal(t, "jpg", blob.KeyExt(newKey))

		_, ok := store.Get(newKey)
		assert.True(t, ok)
		_, ok = store.Get(oldKey)
		assert.False(t, ok)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("old blob delete failure does not abort", func(t *testing.T) {
		db, cache := newFakeDB(), newFakeCache()
		inner := blob.NewFakeStore()
		store := &erroringStore{Store: inner}
		svc, cust, oldKey := setup(t, db, store, cache)

		store.deleteErr = &blob.StorageError{Op: "delete", Key: oldKey, Err: errors.New("unreachable")}

		updated, err := svc.Update(ctx, cust.ID, UpdateInput{
			Name:  "Ada",
			Email: "ada@x.com",
			Image: &Upload{Filename: "new.jpg", Data: []byte("jpg-bytes")},
		})
		require.NoError(t, err)

		// record reflects the new URL even though the old blob lingers
		got, err := db.get(ctx, cust.ID)
		require.NoError(t, err)
		assert.Equal(t, *updated.ImageURL, *got.ImageURL)
		assert.NotEqual(t, *cust.ImageURL, *got.ImageURL)
		_, ok := inner.Get(oldKey)
		assert.True(t, ok)
	})

	t.Run("oversized image leaves record unchanged", func(t *testing.T) {
		db, store, cache := newFakeDB(), blob.NewFakeStore(), newFakeCache()
		svc, cust, _ := setup(t, db, store, cache)

		_, err := svc.Update(ctx, cust.ID, UpdateInput{
			Name:  "Changed",
			Email: "changed@x.com",
			Image: testUpload(6 * 1024 * 1024),
		})

		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, []string{"Max image size is 5MB."}, validationErr.Errors["imageFile"])

		got, err := db.get(ctx, cust.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ada", got.Name)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("upload failure is all-or-nothing", func(t *testing.T) {
		db, cache := newFakeDB(), newFakeCache()
		store := &erroringStore{Store: blob.NewFakeStore()}
		svc, cust, _ := setup(t, db, store, cache)

		store.putErr = &blob.StorageError{Op: "put", Key: "k", Err: errors.New("quota exceeded")}

		_, err := svc.Update(ctx, cust.ID, UpdateInput{
			Name:  "Changed",
			Email: "changed@x.com",
			Image: &Upload{Filename: "new.jpg", Data: []byte("jpg-bytes")},
		})
		require.Error(t, err)

		// no field changed, including name and email
		got, err := db.get(ctx, cust.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ada", got.Name)
		assert.Equal(t, "ada@x.com", got.Email)
		assert.Equal(t, *cust.ImageURL, *got.ImageURL)
	})

	t.Run("record write failure after image replacement", func(t *testing.T) {
		db, store, cache := newFakeDB(), blob.NewFakeStore(), newFakeCache()
		svc, cust, oldKey := setup(t, db, store, cache)

		db.updateErr = errors.New("connection reset")

		_, err := svc.Update(ctx, cust.ID, UpdateInput{
			Name:  "Changed",
			Email: "changed@x.com",
			Image: &Upload{Filename: "new.jpg", Data: []byte("jpg-bytes")},
		})
		require.Error(t, err)

		// the record still holds its old reference, whose blob was already
		// reclaimed, and the new blob is orphaned
		got, err := db.get(ctx, cust.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ada", got.Name)
		assert.Equal(t, *cust.ImageURL, *got.ImageURL)
		_, ok := store.Get(oldKey)
		assert.False(t, ok)
		assert.Equal(t, 1, store.Len())
		// only the create from setup invalidated the listing
		assert.Equal(t, 1, cache.invalidations)
	})

	t.Run("reads and writes the record in one transaction", func(t *testing.T) {
		db, store, cache := newFakeDB(), blob.NewFakeStore(), newFakeCache()
		svc, cust, _ := setup(t, db, store, cache)

		_, err := svc.Update(ctx, cust.ID, UpdateInput{Name: "Ada", Email: "ada@x.com"})
		require.NoError(t, err)
		assert.Equal(t, 1, db.txCalls)
	})

	t.Run("unknown id", func(t *testing.T) {
		db, store, cache := newFakeDB(), blob.NewFakeStore(), newFakeCache()
		svc := newTestService(db, store, cache)

		_, err := svc.Update(ctx, "cust-does-not-exist", UpdateInput{Name: "Ada", Email: "ada@x.com"})
		assert.ErrorIs(t, err, internal.ErrResourceNotFound)
		assert.Zero(t, store.Len())
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes record and blob", func(t *testing.T) {
		db, store, cache := newFakeDB(), blob.NewFakeStore(), newFakeCache()
		svc := newTestService(db, store, cache)
		cust, err := svc.Create(ctx, CreateInput{Name: "Ada", Email: "ada@x.com", Image: testUpload(1)})
		require.NoError(t, err)

		warning, err := svc.Delete(ctx, cust.ID)
		require.NoError(t, err)
		assert.Empty(t, warning)

		_, err = db.get(ctx, cust.ID)
		assert.ErrorIs(t, err, internal.ErrResourceNotFound)
		assert.Zero(t, store.Len())
		assert.Equal(t, 1, db.txCalls)
	})

	t.Run("record delete failure performs no blob deletes", func(t *testing.T) {
		db, cache := newFakeDB(), newFakeCache()
		inner := blob.NewFakeStore()
		store := &erroringStore{Store: inner}
		svc := newTestService(db, store, cache)
		cust, err := svc.Create(ctx, CreateInput{Name: "Ada", Email: "ada@x.com", Image: testUpload(1)})
		require.NoError(t, err)

		db.deleteErr = errors.New("connection reset")

		warning, err := svc.Delete(ctx, cust.ID)
		require.Error(t, err)
		assert.Empty(t, warning)

		// record and blob both remain untouched
		_, err = db.get(ctx, cust.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, inner.Len())
		assert.Zero(t, store.deletes)
		// only the create invalidated the listing
		assert.Equal(t, 1, cache.invalidations)
	})

	t.Run("no image performs zero blob deletes", func(t *testing.T) {
		db, cache := newFakeDB(), newFakeCache()
		store := &erroringStore{Store: blob.NewFakeStore()}
		svc := newTestService(db, store, cache)

		// seed a record without an image
		require.NoError(t, db.create(ctx, &Customer{ID: "cust-1", Name: "Ada", Email: "ada@x.com"}))

		warning, err := svc.Delete(ctx, "cust-1")
		require.NoError(t, err)
		assert.Empty(t, warning)
		assert.Zero(t, store.deletes)
	})

	t.Run("blob delete failure yields warning not error", func(t *testing.T) {
		db, cache := newFakeDB(), newFakeCache()
		store := &erroringStore{Store: blob.NewFakeStore()}
		svc := newTestService(db, store, cache)
		cust, err := svc.Create(ctx, CreateInput{Name: "Ada", Email: "ada@x.com", Image: testUpload(1)})
		require.NoError(t, err)

		store.deleteErr = &blob.StorageError{Op: "delete", Key: "k", Err: errors.New("unreachable")}

		warning, err := svc.Delete(ctx, cust.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, warning)

		// record stays deleted
		_, err = db.get(ctx, cust.ID)
		assert.ErrorIs(t, err, internal.ErrResourceNotFound)
	})

	t.Run("unknown id", func(t *testing.T) {
		db, store, cache := newFakeDB(), blob.NewFakeStore(), newFakeCache()
		svc := newTestService(db, store, cache)

		_, err := svc.Delete(ctx, "cust-does-not-exist")
		assert.ErrorIs(t, err, internal.ErrResourceNotFound)
	})
}
