// Package errs contains sentinel errors shared by stores, services and handlers.
package errs

import "errors"

var (
	// ErrNotFound indicates the requested link or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateURL indicates another record already owns the normalized URL.
	ErrDuplicateURL = errors.New("duplicate url")

	// ErrInvalidURL indicates an empty, malformed or non-https URL.
	ErrInvalidURL = errors.New("invalid url")

	// ErrValidation indicates a rejected field at the input boundary.
	ErrValidation = errors.New("validation")

	// ErrUnauthorized indicates a missing, expired or revoked session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrPermissionDenied indicates the remote collection refused the operation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUnsupportedFormat indicates an import/export format other than json or csv.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrRateLimited indicates too many sign-in link requests.
	ErrRateLimited = errors.New("rate limited")
)

// FieldError is a validation failure tied to one input field.
// Key names the user-facing message; the HTTP layer translates it.
type FieldError struct {
	Field string
	Key   string
	Err   error // ErrValidation when nil
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Unwrap().Error()
}

// Unwrap returns the underlying sentinel.
func (e *FieldError) Unwrap() error {
	if e.Err == nil {
		return ErrValidation
	}
	return e.Err
}

// Is makes every FieldError match ErrValidation as well as its own sentinel.
func (e *FieldError) Is(target error) bool {
	return target == ErrValidation
}
