package customer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mjgale/cams/internal"
	"github.com/mjgale/cams/internal/blob"
	camshttp "github.com/mjgale/cams/internal/http"
	"github.com/mjgale/cams/internal/http/decode"
)

const (
	// maxRequestSize caps a mutation request body. It is deliberately larger
	// than MaxImageSize so that an oversized image reaches the validator and
	// is rejected with a field error rather than a blunt 413.
	maxRequestSize = 2 * MaxImageSize

	// multipartMemory is how much of a parsed multipart form is held in
	// memory before spilling to disk.
	multipartMemory = 1 << 20
)

type (
	// api is the JSON API for customers
	api struct {
		svc apiService
		// cache fronts the customer listing; nil disables caching.
		cache listingCache
	}

	// apiService provides the api with access to customers
	apiService interface {
		Create(ctx context.Context, input CreateInput) (*Customer, error)
		Update(ctx context.Context, id string, input UpdateInput) (*Customer, error)
		Delete(ctx context.Context, id string) (string, error)
		Get(ctx context.Context, id string) (*Customer, error)
		List(ctx context.Context, opts ListOptions) (*Page, error)
	}

	// listingCache caches the rendered listing by route.
	listingCache interface {
		Get(route string) ([]byte, error)
		Set(route string, value []byte) error
	}

	deleteResult struct {
		Success bool   `json:"success"`
		Warning string `json:"warning,omitempty"`
	}
)

func (a *api) addHandlers(r *mux.Router) {
	r = camshttp.APIRouter(r)

	r.HandleFunc("/customers", a.list).Methods("GET")
	r.HandleFunc("/customers", a.create).Methods("POST")
	r.HandleFunc("/customers/{customer_id}", a.get).Methods("GET")
	r.HandleFunc("/customers/{customer_id}", a.update).Methods("POST", "PATCH")
	r.HandleFunc("/customers/{customer_id}", a.delete).Methods("DELETE")
}

func (a *api) create(w http.ResponseWriter, r *http.Request) {
	name, email, image, err := mutationForm(w, r)
	if err != nil {
		badRequest(w)
		return
	}

	cust, err := a.svc.Create(r.Context(), CreateInput{
		Name:  name,
		Email: email,
		Image: image,
	})
	if err != nil {
		a.error(w, err, "Create")
		return
	}

	// signal the caller to navigate to the listing
	w.Header().Set("Location", ListingRoute)
	writeJSON(w, http.StatusCreated, cust)
}

func (a *api) update(w http.ResponseWriter, r *http.Request) {
	id, err := decode.Param("customer_id", r)
	if err != nil {
		badRequest(w)
		return
	}
	name, email, image, err := mutationForm(w, r)
	if err != nil {
		badRequest(w)
		return
	}

	cust, err := a.svc.Update(r.Context(), id, UpdateInput{
		Name:  name,
		Email: email,
		Image: image,
	})
	if err != nil {
		a.error(w, err, "Update")
		return
	}

	w.Header().Set("Location", ListingRoute)
	writeJSON(w, http.StatusOK, cust)
}

func (a *api) delete(w http.ResponseWriter, r *http.Request) {
	id, err := decode.Param("customer_id", r)
	if err != nil {
		badRequest(w)
		return
	}

	warning, err := a.svc.Delete(r.Context(), id)
	if err != nil {
		a.error(w, err, "Delete")
		return
	}

	writeJSON(w, http.StatusOK, deleteResult{Success: true, Warning: warning})
}

func (a *api) get(w http.ResponseWriter, r *http.Request) {
	id, err := decode.Param("customer_id", r)
	if err != nil {
		badRequest(w)
		return
	}

	cust, err := a.svc.Get(r.Context(), id)
	if err != nil {
		a.error(w, err, "Get")
		return
	}

	writeJSON(w, http.StatusOK, cust)
}

func (a *api) list(w http.ResponseWriter, r *http.Request) {
	var opts ListOptions
	if err := decode.All(&opts, r); err != nil {
		badRequest(w)
		return
	}

	// only the default listing is cached
	cacheable := a.cache != nil && opts == (ListOptions{})
	if cacheable {
		if cached, err := a.cache.Get(ListingRoute); err == nil {
			w.Header().Set("Content-Type", "application/json")
			w.Write(cached)
			return
		}
	}

	page, err := a.svc.List(r.Context(), opts)
	if err != nil {
		a.error(w, err, "List")
		return
	}

	payload, err := json.Marshal(page)
	if err != nil {
		a.error(w, err, "List")
		return
	}
	if cacheable {
		a.cache.Set(ListingRoute, payload)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

// error maps a service error onto a caller-facing FormState. Messages are
// stable and never include backend error text.
func (a *api) error(w http.ResponseWriter, err error, op string) {
	var (
		validationErr *ValidationError
		storageErr    *blob.StorageError
	)
	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusUnprocessableEntity, FormState{
			Errors:  validationErr.Errors,
			Message: internal.String("Missing Fields. Failed to " + op + " Customer."),
		})
	case errors.As(err, &storageErr):
		writeJSON(w, http.StatusInternalServerError, FormState{
			Message: internal.String("Storage Error: Failed to " + op + " Customer."),
		})
	case errors.Is(err, internal.ErrResourceNotFound):
		writeJSON(w, http.StatusNotFound, FormState{
			Message: internal.String("Customer not found."),
		})
	default:
		writeJSON(w, http.StatusInternalServerError, FormState{
			Message: internal.String("Database Error: Failed to " + op + " Customer."),
		})
	}
}

// mutationForm decodes the name, email and optional image file from a create
// or update request. Both multipart and url-encoded forms are accepted; only
// a multipart form can carry an image.
func mutationForm(w http.ResponseWriter, r *http.Request) (name, email string, image *Upload, err error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return "", "", nil, err
	}

	name = r.FormValue("name")
	email = r.FormValue("email")

	f, header, err := r.FormFile("imageFile")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return name, email, nil, nil
	} else if err != nil {
		return "", "", nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", "", nil, err
	}
	return name, email, &Upload{Filename: header.Filename, Data: data}, nil
}

// badRequest rejects a request that could not be decoded, with a stable
// message rather than parser error text (which would leak details such as
// body-size limits).
func badRequest(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnprocessableEntity, FormState{
		Message: internal.String("Invalid form submission."),
	})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
