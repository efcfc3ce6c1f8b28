package customer

import "fmt"

type (
	// FormErrors maps a field name to the validation errors for that field,
	// in the order they were detected.
	FormErrors map[string][]string

	// FormState is the transient result of one mutation attempt, relayed to
	// the caller. It is never persisted.
	FormState struct {
		Errors  FormErrors `json:"errors,omitempty"`
		Message *string    `json:"message,omitempty"`
	}
)

func (e FormErrors) add(field, msg string) {
	e[field] = append(e[field], msg)
}

// ValidationError carries field-scoped validation errors. No mutation has
// been performed when it is returned.
type ValidationError struct {
	Errors FormErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Errors))
}
