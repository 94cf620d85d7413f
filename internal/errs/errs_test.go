package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestFieldError(t *testing.T) {
	err := fmt.Errorf("add link: %w", &FieldError{Field: "url", Key: "validate_https", Err: ErrInvalidURL})

	if !errors.Is(err, ErrValidation) {
		t.Error("FieldError should match ErrValidation")
	}
	if !errors.Is(err, ErrInvalidURL) {
		t.Error("FieldError should match its own sentinel")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("FieldError should not match unrelated sentinels")
	}

	var fe *FieldError
	if !errors.As(err, &fe) || fe.Key != "validate_https" {
		t.Errorf("errors.As() = %v, want the field error", fe)
	}
	if got := (&FieldError{Field: "title"}).Error(); got != "title: validation" {
		t.Errorf("Error() = %q, want %q", got, "title: validation")
	}
}
