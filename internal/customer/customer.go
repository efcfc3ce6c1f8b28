// Package customer manages customer records and their image assets.
//
// Each customer owns at most one image, held in an external blob store and
// referenced by URL from the customer record. The record is the single source
// of truth for which blob is current; the service keeps the two stores
// consistent by ordering mutations so that a record never references a blob
// that does not exist. The cost of that ordering is that a mid-sequence
// failure can leave an unreferenced blob behind, which is accepted.
package customer

import (
	"time"

	"github.com/mjgale/cams/internal"
)

type (
	// Customer is an administrative customer record.
	Customer struct {
		ID        string    `json:"id"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
		Name      string    `json:"name"`
		Email     string    `json:"email"`
		// ImageURL references the customer's current image in the blob
		// store. Nil means no image is associated.
		ImageURL *string `json:"image_url"`
	}

	// Upload is a raw file payload submitted with a create or update.
	Upload struct {
		Filename string
		Data     []byte
	}

	// ListOptions are options for listing customers.
	ListOptions struct {
		// PageSize is the number of customers per page; capped at
		// MaxPageSize.
		PageSize int `schema:"page_size"`
		// PageNumber is the 1-based page to retrieve.
		PageNumber int `schema:"page_number"`
	}

	// Page is one page of customers along with the total count.
	Page struct {
		Items []*Customer `json:"items"`
		Total int64       `json:"total"`
	}
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// NewID constructs a customer ID: the resource kind and a random 16 character
// string, separated by a hyphen.
func NewID() string {
	return "cust-" + internal.GenerateRandomString(16)
}

func (opts ListOptions) limit() int {
	switch {
	case opts.PageSize <= 0:
		return DefaultPageSize
	case opts.PageSize > MaxPageSize:
		return MaxPageSize
	default:
		return opts.PageSize
	}
}

func (opts ListOptions) offset() int {
	if opts.PageNumber <= 1 {
		return 0
	}
	return (opts.PageNumber - 1) * opts.limit()
}
