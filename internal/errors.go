package internal

import (
	"errors"
	"fmt"
)

// Generic errors
var (
	// ErrResourceNotFound is returned when a resource cannot be found.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrResourceAlreadyExists is returned when attempting to create a resource
	// that already exists.
	ErrResourceAlreadyExists = errors.New("resource already exists")

	// ErrUploadTooLarge is returned when a user attempts to upload data that
	// is too large.
	ErrUploadTooLarge = errors.New("upload is too large")

	// ErrEmptyUpload is returned when a user uploads an empty payload.
	ErrEmptyUpload = errors.New("upload is empty")
)

// ErrMissingParameter occurs when the caller has failed to provide a
// required parameter.
type ErrMissingParameter struct {
	Parameter string
}

func (e *ErrMissingParameter) Error() string {
	return fmt.Sprintf("required parameter missing: %s", e.Parameter)
}
