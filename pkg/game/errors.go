package game

import (
	"errors"
	"fmt"

	"github.com/dd0wney/stratagem/pkg/validation"
)

// Common sentinel errors
var (
	// ErrInvalidInput is the validation sentinel; every *validation.FieldError unwraps to it.
	ErrInvalidInput = validation.ErrInvalid

	ErrShapeMismatch = errors.New("allocation does not match topology")
	ErrUnknownKind   = errors.New("unknown resource kind")
	ErrOutOfBounds   = errors.New("coverage out of bounds")
	ErrOverBudget    = errors.New("allocation exceeds budget")
)

// AllocationError describes which node and kind of an allocation broke an
// invariant.
type AllocationError struct {
	Op    string       // Operation that failed (e.g., "score", "normalize")
	Node  string       // Node ID, empty for allocation-wide failures
	Kind  ResourceKind // Resource kind, meaningful when HasKind is set
	Value float64      // Offending value
	Cause error        // Underlying sentinel

	HasKind bool
}

// Error implements the error interface.
func (e *AllocationError) Error() string {
	switch {
	case e.Node != "" && e.HasKind:
		return fmt.Sprintf("%s: node %s kind %s (%g): %v", e.Op, e.Node, e.Kind, e.Value, e.Cause)
	case e.Node != "":
		return fmt.Sprintf("%s: node %s (%g): %v", e.Op, e.Node, e.Value, e.Cause)
	default:
		return fmt.Sprintf("%s (%g): %v", e.Op, e.Value, e.Cause)
	}
}

// Unwrap returns the underlying cause for error chain support.
func (e *AllocationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error's cause.
func (e *AllocationError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// ErrorBuilder provides a fluent interface for building AllocationErrors.
type ErrorBuilder struct {
	err AllocationError
}

// NewError creates a new error builder with the given operation.
func NewError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: AllocationError{Op: op}}
}

// Node sets the offending node.
func (b *ErrorBuilder) Node(id string) *ErrorBuilder {
	b.err.Node = id
	return b
}

// Kind sets the offending resource kind.
func (b *ErrorBuilder) Kind(k ResourceKind) *ErrorBuilder {
	b.err.Kind = k
	b.err.HasKind = true
	return b
}

// Value sets the offending value.
func (b *ErrorBuilder) Value(v float64) *ErrorBuilder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error cause.
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Err returns the error as an error interface.
func (b *ErrorBuilder) Err() error {
	return &b.err
}

// IsInvalidInput reports whether err is a validation failure.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsInfeasible reports whether err is an allocation invariant violation.
func IsInfeasible(err error) bool {
	return errors.Is(err, ErrOutOfBounds) || errors.Is(err, ErrOverBudget) || errors.Is(err, ErrUnknownKind)
}
