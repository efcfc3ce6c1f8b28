package customer

import (
	"context"
	"sort"
	"sync"

	"github.com/mjgale/cams/internal"
	"github.com/mjgale/cams/internal/blob"
	"github.com/mjgale/cams/internal/logr"
)

func newTestService(db db, blobs blob.Store, cache Cache) *Service {
	svc := &Service{
		Logger: logr.NewNoopLogger(),
		db:     db,
		blobs:  blobs,
		cache:  cache,
	}
	svc.api = &api{svc: svc, cache: cache}
	return svc
}

// fakeDB is an in-memory stand-in for the postgres persistence layer.
type fakeDB struct {
	mu        sync.Mutex
	customers map[string]*Customer

	createErr error
	updateErr error
	deleteErr error

	txCalls int
}

func newFakeDB() *fakeDB {
	return &fakeDB{customers: make(map[string]*Customer)}
}

func (f *fakeDB) tx(ctx context.Context, fn func(context.Context) error) error {
	f.mu.Lock()
	f.txCalls++
	f.mu.Unlock()

	return fn(ctx)
}

func (f *fakeDB) create(ctx context.Context, cust *Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.customers[cust.ID]; ok {
		return internal.ErrResourceAlreadyExists
	}
	cp := *cust
	f.customers[cust.ID] = &cp
	return nil
}

func (f *fakeDB) update(ctx context.Context, cust *Customer) (*Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return nil, f.updateErr
	}
	existing, ok := f.customers[cust.ID]
	if !ok {
		return nil, internal.ErrResourceNotFound
	}
	existing.Name = cust.Name
	existing.Email = cust.Email
	existing.ImageURL = cust.ImageURL
	existing.UpdatedAt = cust.UpdatedAt
	cp := *existing
	return &cp, nil
}

func (f *fakeDB) delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.customers[id]; !ok {
		return internal.ErrResourceNotFound
	}
	delete(f.customers, id)
	return nil
}

func (f *fakeDB) get(ctx context.Context, id string) (*Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cust, ok := f.customers[id]
	if !ok {
		return nil, internal.ErrResourceNotFound
	}
	cp := *cust
	return &cp, nil
}

func (f *fakeDB) getImageURL(ctx context.Context, id string) (*string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cust, ok := f.customers[id]
	if !ok {
		return nil, internal.ErrResourceNotFound
	}
	return cust.ImageURL, nil
}

func (f *fakeDB) list(ctx context.Context, opts ListOptions) (*Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := make([]*Customer, 0, len(f.customers))
	for _, cust := range f.customers {
		cp := *cust
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return &Page{Items: items, Total: int64(len(items))}, nil
}

// fakeCache records listing invalidations.
type fakeCache struct {
	mu            sync.Mutex
	entries       map[string][]byte
	invalidations int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (f *fakeCache) Get(route string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry, ok := f.entries[route]
	if !ok {
		return nil, internal.ErrResourceNotFound
	}
	return entry, nil
}

func (f *fakeCache) Set(route string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries[route] = value
	return nil
}

func (f *fakeCache) Invalidate(route string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.entries, route)
	f.invalidations++
	return nil
}

// erroringStore wraps a Store, overriding operations with errors.
type erroringStore struct {
	blob.Store

	putErr    error
	urlErr    error
	deleteErr error

	deletes int
}

func (s *erroringStore) Put(ctx context.Context, key string, data []byte) error {
	if s.putErr != nil {
		return s.putErr
	}
	return s.Store.Put(ctx, key, data)
}

func (s *erroringStore) URL(ctx context.Context, key string) (string, error) {
	if s.urlErr != nil {
		return "", s.urlErr
	}
	return s.Store.URL(ctx, key)
}

func (s *erroringStore) Delete(ctx context.Context, key string) error {
	s.deletes++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return s.Store.Delete(ctx, key)
}
