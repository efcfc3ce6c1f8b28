package customer

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/mjgale/cams/internal"
)

// MaxImageSize is the maximum permitted size of an uploaded image in bytes.
const MaxImageSize = 5 * 1024 * 1024

// user-facing validation messages; stable, and never substituted with
// backend error text.
const (
	msgNameRequired  = "Please enter a name."
	msgEmailRequired = "Please enter an email address."
	msgEmailInvalid  = "Please enter a valid email address."
	msgImageRequired = "Please upload an image."
	msgImageTooLarge = "Max image size is 5MB."
)

type (
	// CreateInput is the raw field input for creating a customer.
	CreateInput struct {
		Name  string
		Email string
		Image *Upload
	}

	// UpdateInput is the raw field input for updating a customer. A nil or
	// empty Image means the existing image is retained unchanged.
	UpdateInput struct {
		Name  string
		Email string
		Image *Upload
	}
)

// Valid validates and coerces the input, trimming whitespace in place.
// It returns a non-empty FormErrors if any field is invalid.
func (in *CreateInput) Valid() FormErrors {
	errs := make(FormErrors)
	in.Name = validName(in.Name, errs)
	in.Email = validEmail(in.Email, errs)
	switch err := checkImage(in.Image); {
	case errors.Is(err, internal.ErrEmptyUpload):
		errs.add("imageFile", msgImageRequired)
	case errors.Is(err, internal.ErrUploadTooLarge):
		errs.add("imageFile", msgImageTooLarge)
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Valid validates and coerces the input, trimming whitespace in place. The
// image is optional: absent or empty means the existing image reference is
// retained.
func (in *UpdateInput) Valid() FormErrors {
	errs := make(FormErrors)
	in.Name = validName(in.Name, errs)
	in.Email = validEmail(in.Email, errs)
	if in.Image != nil && len(in.Image.Data) == 0 {
		// normalise an empty payload to "no image submitted"
		in.Image = nil
	}
	if errors.Is(checkImage(in.Image), internal.ErrUploadTooLarge) {
		errs.add("imageFile", msgImageTooLarge)
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validName(name string, errs FormErrors) string {
	name = strings.TrimSpace(name)
	if name == "" {
		errs.add("name", msgNameRequired)
	}
	return name
}

func validEmail(email string, errs FormErrors) string {
	email = strings.TrimSpace(email)
	if email == "" {
		errs.add("email", msgEmailRequired)
		return email
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		errs.add("email", msgEmailInvalid)
	}
	return email
}

// checkImage classifies an upload against the image constraints, using the
// shared upload sentinels.
func checkImage(upload *Upload) error {
	switch {
	case upload == nil || len(upload.Data) == 0:
		return internal.ErrEmptyUpload
	case len(upload.Data) > MaxImageSize:
		return internal.ErrUploadTooLarge
	}
	return nil
}
