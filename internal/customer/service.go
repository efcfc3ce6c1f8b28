package customer

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/mjgale/cams/internal"
	"github.com/mjgale/cams/internal/blob"
	"github.com/mjgale/cams/internal/logr"
	"github.com/mjgale/cams/internal/sql"
)

type (
	// Service orchestrates customer mutations across the relational store and
	// the blob store.
	Service struct {
		logr.Logger

		db    db
		blobs blob.Store
		cache cacheInvalidator

		api *api
	}

	Options struct {
		logr.Logger
		*sql.DB

		Blobs blob.Store
		Cache Cache
	}

	// Cache fronts the customer listing view: the api populates it on reads
	// and the service invalidates it after committed mutations.
	Cache interface {
		listingCache
		cacheInvalidator
	}

	// db is the persistence layer for customer records.
	db interface {
		// tx runs the callback's operations within a transaction.
		tx(ctx context.Context, fn func(context.Context) error) error
		create(ctx context.Context, cust *Customer) error
		update(ctx context.Context, cust *Customer) (*Customer, error)
		delete(ctx context.Context, id string) error
		get(ctx context.Context, id string) (*Customer, error)
		getImageURL(ctx context.Context, id string) (*string, error)
		list(ctx context.Context, opts ListOptions) (*Page, error)
	}

	// cacheInvalidator is notified after every committed mutation so that
	// stale cached views are discarded. Notification is best-effort: its
	// failure never fails the mutation.
	cacheInvalidator interface {
		Invalidate(route string) error
	}
)

// ListingRoute is the cached route invalidated after every committed
// mutation.
const ListingRoute = "/customers"

func NewService(opts Options) *Service {
	svc := Service{
		Logger: opts.Logger,
		db:     &pgdb{opts.DB},
		blobs:  opts.Blobs,
		cache:  opts.Cache,
	}
	svc.api = &api{svc: &svc, cache: opts.Cache}
	return &svc
}

func (s *Service) AddHandlers(r *mux.Router) {
	s.api.addHandlers(r)
}

// Create creates a customer with an image. The image is uploaded and its URL
// resolved before the record is inserted, so a created record always
// references a resolvable blob. A failure after upload leaves the blob
// unreferenced; that orphan is accepted rather than rolled back.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Customer, error) {
	if errs := input.Valid(); errs != nil {
		return nil, &ValidationError{Errors: errs}
	}

	key := blob.NewKey(input.Image.Filename)
	if err := s.blobs.Put(ctx, key, input.Image.Data); err != nil {
		s.Error(err, "uploading customer image", "key", key)
		return nil, err
	}
	url, err := s.blobs.URL(ctx, key)
	if err != nil {
		// the blob exists but is now unreferenced
		s.Error(err, "resolving customer image url", "key", key)
		return nil, err
	}

	now := internal.CurrentTimestamp()
	cust := &Customer{
		ID:        NewID(),
		CreatedAt: now,
		UpdatedAt: now,
		Name:      input.Name,
		Email:     input.Email,
		ImageURL:  &url,
	}
	if err := s.db.create(ctx, cust); err != nil {
		s.Error(err, "creating customer", "id", cust.ID, "key", key)
		return nil, err
	}

	s.invalidateListing()
	s.V(0).Info("created customer", "id", cust.ID, "name", cust.Name)
	return cust, nil
}

// Update updates a customer's name and email, and optionally replaces its
// image. The current image reference is re-read server-side immediately
// before mutating rather than trusted from the caller, so a concurrent edit
// cannot resurrect a stale reference.
//
// When a new image is submitted the old blob is deleted only after the new
// blob is confirmed resolvable; a failure deleting the old blob is downgraded
// to a warning because correctness of the live reference matters more than
// prompt reclamation.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (*Customer, error) {
	if errs := input.Valid(); errs != nil {
		return nil, &ValidationError{Errors: errs}
	}

	// The image reference is read and written within one transaction, with
	// the row locked in between, so a concurrent update cannot interleave
	// and resurrect a stale reference.
	var cust *Customer
	err := s.db.tx(ctx, func(ctx context.Context) error {
		imageURL, err := s.db.getImageURL(ctx, id)
		if err != nil {
			s.Error(err, "retrieving customer image url", "id", id)
			return err
		}

		if input.Image != nil {
			key := blob.NewKey(input.Image.Filename)
			if err := s.blobs.Put(ctx, key, input.Image.Data); err != nil {
				// nothing has changed, including name and email
				s.Error(err, "uploading replacement customer image", "id", id, "key", key)
				return err
			}
			url, err := s.blobs.URL(ctx, key)
			if err != nil {
				// the new blob is now an orphan, as in Create
				s.Error(err, "resolving replacement customer image url", "id", id, "key", key)
				return err
			}
			if oldKey := keyFromImageURL(imageURL); oldKey != "" {
				if err := s.blobs.Delete(ctx, oldKey); err != nil {
					// the record will reference the new blob regardless; the
					// old blob lingers until reclaimed out of band
					s.Error(err, "deleting replaced customer image", "id", id, "key", oldKey)
				}
			}
			imageURL = &url
		}

		cust, err = s.db.update(ctx, &Customer{
			ID:        id,
			UpdatedAt: internal.CurrentTimestamp(),
			Name:      input.Name,
			Email:     input.Email,
			ImageURL:  imageURL,
		})
		if err != nil {
			s.Error(err, "updating customer", "id", id)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateListing()
	s.V(0).Info("updated customer", "id", id, "name", cust.Name)
	return cust, nil
}

// Delete deletes a customer record and then its image blob. The record is
// deleted first: once the caller observes success the customer must not
// reappear in listings, even if blob cleanup fails. A blob cleanup failure is
// returned as a warning, not an error.
func (s *Service) Delete(ctx context.Context, id string) (warning string, err error) {
	var imageURL *string
	err = s.db.tx(ctx, func(ctx context.Context) error {
		var err error
		imageURL, err = s.db.getImageURL(ctx, id)
		if err != nil {
			s.Error(err, "retrieving customer image url", "id", id)
			return err
		}
		if err := s.db.delete(ctx, id); err != nil {
			s.Error(err, "deleting customer", "id", id)
			return err
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if key := keyFromImageURL(imageURL); key != "" {
		if err := s.blobs.Delete(ctx, key); err != nil {
			// the record is already gone and is not resurrected
			s.Error(err, "deleting customer image", "id", id, "key", key)
			warning = "customer deleted, but its image could not be removed"
		}
	}

	s.invalidateListing()
	s.V(0).Info("deleted customer", "id", id)
	return warning, nil
}

// Get retrieves a customer by ID.
func (s *Service) Get(ctx context.Context, id string) (*Customer, error) {
	cust, err := s.db.get(ctx, id)
	if err != nil {
		s.Error(err, "retrieving customer", "id", id)
		return nil, err
	}
	s.V(9).Info("retrieved customer", "id", id)
	return cust, nil
}

// List lists a page of customers.
func (s *Service) List(ctx context.Context, opts ListOptions) (*Page, error) {
	page, err := s.db.list(ctx, opts)
	if err != nil {
		s.Error(err, "listing customers")
		return nil, err
	}
	s.V(9).Info("listed customers", "count", len(page.Items))
	return page, nil
}

func (s *Service) invalidateListing() {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ListingRoute); err != nil {
		s.Error(err, "invalidating cached listing", "route", ListingRoute)
	}
}

func keyFromImageURL(imageURL *string) string {
	if imageURL == nil {
		return ""
	}
	return blob.KeyFromURL(*imageURL)
}
