package validation

import (
	"errors"
	"fmt"
	"math"
)

// Checker provides a fluent interface for validating input values.
// It collects all failures rather than stopping at the first one.
type Checker struct {
	prefix string
	errors []error
}

// NewChecker creates a checker whose field paths start with prefix.
// An empty prefix reports bare field names.
func NewChecker(prefix string) *Checker {
	return &Checker{prefix: prefix}
}

func (c *Checker) fail(field, format string, args ...any) *Checker {
	c.errors = append(c.errors, Errorf(joinPath(c.prefix, field), format, args...))
	return c
}

// Finite validates that a float is neither NaN nor infinite.
func (c *Checker) Finite(field string, value float64) *Checker {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return c.fail(field, "must be a finite number, got %v", value)
	}
	return c
}

// PositiveFloat validates that a float field is finite and > 0.
func (c *Checker) PositiveFloat(field string, value float64) *Checker {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return c.fail(field, "must be positive, got %v", value)
	}
	return c
}

// NonNegativeFloat validates that a float field is finite and >= 0.
func (c *Checker) NonNegativeFloat(field string, value float64) *Checker {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return c.fail(field, "must be non-negative, got %v", value)
	}
	return c
}

// HalfOpenUnit validates value ∈ (0, 1].
func (c *Checker) HalfOpenUnit(field string, value float64) *Checker {
	if math.IsNaN(value) || value <= 0 || value > 1 {
		return c.fail(field, "must be in (0, 1], got %v", value)
	}
	return c
}

// NonNegative validates that an int field is >= 0.
func (c *Checker) NonNegative(field string, value int) *Checker {
	if value < 0 {
		return c.fail(field, "must be non-negative, got %d", value)
	}
	return c
}

// NotEmpty validates that a collection of length n has at least one element.
func (c *Checker) NotEmpty(field string, n int) *Checker {
	if n == 0 {
		return c.fail(field, "must not be empty")
	}
	return c
}

// Check records reason against field when ok is false.
func (c *Checker) Check(field string, ok bool, reason string) *Checker {
	if !ok {
		return c.fail(field, "%s", reason)
	}
	return c
}

// Custom applies a custom validation function. FieldErrors returned by fn
// keep their own path under the checker prefix; other errors are attributed
// to field.
func (c *Checker) Custom(field string, fn func() error) *Checker {
	err := fn()
	if err == nil {
		return c
	}
	var fe *FieldError
	if errors.As(err, &fe) {
		c.errors = append(c.errors, &FieldError{Field: joinPath(c.prefix, fe.Field), Reason: fe.Reason})
		return c
	}
	return c.fail(field, "%v", err)
}

// Add records an existing error as-is.
func (c *Checker) Add(err error) *Checker {
	if err != nil {
		c.errors = append(c.errors, err)
	}
	return c
}

// When conditionally applies validations if the condition is true.
func (c *Checker) When(condition bool, validations func(*Checker)) *Checker {
	if condition {
		validations(c)
	}
	return c
}

// HasErrors returns true if any validation errors occurred.
func (c *Checker) HasErrors() bool {
	return len(c.errors) > 0
}

// Errors returns all validation errors.
func (c *Checker) Errors() []error {
	return c.errors
}

// Err returns nil, the single failure, or all failures joined. The first
// failure is always the one errors.As finds.
func (c *Checker) Err() error {
	switch len(c.errors) {
	case 0:
		return nil
	case 1:
		return c.errors[0]
	default:
		return errors.Join(c.errors...)
	}
}

// String summarises the failures for logs.
func (c *Checker) String() string {
	if len(c.errors) == 0 {
		return "ok"
	}
	return fmt.Sprintf("%d validation errors, first: %v", len(c.errors), c.errors[0])
}

// DefaultOr returns the value if it's non-zero, otherwise returns the default.
func DefaultOr[T comparable](value, defaultValue T) T {
	var zero T
	if value == zero {
		return defaultValue
	}
	return value
}
