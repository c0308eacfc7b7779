package registry

import "fmt"

// APIError is a failed registry call. FieldErrors is populated when the
// server returned field-level validation errors; otherwise Message carries
// the generic error. Server-side field errors are authoritative over client
// validation for uniqueness and format edge cases.
type APIError struct {
	StatusCode  int
	Message     string
	FieldErrors map[string][]string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if len(e.FieldErrors) > 0 {
		return fmt.Sprintf("registry rejected request (%d): %d field error(s)", e.StatusCode, len(e.FieldErrors))
	}
	if e.Message != "" {
		return fmt.Sprintf("registry error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("registry error (%d)", e.StatusCode)
}

// HasFieldErrors reports whether the error carries field-level detail.
func (e *APIError) HasFieldErrors() bool {
	return len(e.FieldErrors) > 0
}

// FlatFieldErrors collapses each field's messages into a single string
// suitable for merging into the draft's error map.
func (e *APIError) FlatFieldErrors() map[string]string {
	out := make(map[string]string, len(e.FieldErrors))
	for field, msgs := range e.FieldErrors {
		if len(msgs) > 0 {
			out[field] = msgs[0]
		}
	}
	return out
}
