package apperrors

import "errors"

// ErrValidation reports a field that failed boundary validation
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return e.Field + ": " + e.Message
}

// NotFoundError reports an identifier that does not resolve. This is the only
// failure the analytics engine lets propagate to callers; every internal
// degeneracy resolves to a neutral value instead.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found: " + e.ID
}

// NewNotFound builds a NotFoundError for the given resource and identifier
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// IsNotFound reports whether err wraps a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
