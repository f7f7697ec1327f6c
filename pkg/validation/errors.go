package validation

import (
	"errors"
	"fmt"
)

// ErrInvalid is the sentinel every validation failure unwraps to.
var ErrInvalid = errors.New("invalid input")

// FieldError identifies the offending field of a rejected input.
type FieldError struct {
	Field  string // dotted path, e.g. "nodes[2].value"
	Reason string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalid, e.Field, e.Reason)
}

// Unwrap returns ErrInvalid.
func (e *FieldError) Unwrap() error {
	return ErrInvalid
}

// Errorf builds a FieldError with a formatted reason.
func Errorf(field, format string, args ...any) *FieldError {
	return &FieldError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// FieldOf returns the field named by the first FieldError in err's chain.
func FieldOf(err error) (string, bool) {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe.Field, true
	}
	return "", false
}
