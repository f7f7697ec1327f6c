package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance; validator.Validate caches
// struct metadata and is safe for concurrent use.
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their yaml/json names so errors match input files.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"yaml", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
}

// Struct validates v's struct tags. Field paths in the returned FieldError
// are prefixed with prefix, e.g. Struct("nodes[3]", node).
func Struct(prefix string, v any) error {
	if err := validate.Struct(v); err != nil {
		return formatValidationError(prefix, err)
	}
	return nil
}

func joinPath(prefix, field string) string {
	switch {
	case prefix == "":
		return field
	case field == "":
		return prefix
	case strings.HasPrefix(field, "["):
		return prefix + field
	default:
		return prefix + "." + field
	}
}

// formatValidationError converts the first validator error into a FieldError
func formatValidationError(prefix string, err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return &FieldError{Field: joinPath(prefix, ""), Reason: err.Error()}
	}

	e := validationErrs[0]
	// Namespace is "Struct.field.sub"; drop the struct type name.
	field := e.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	field = joinPath(prefix, field)

	param := e.Param()
	switch e.Tag() {
	case "required":
		return Errorf(field, "field is required")
	case "gt":
		return Errorf(field, "must be greater than %s, got %v", param, e.Value())
	case "gte", "min":
		return Errorf(field, "must be at least %s, got %v", param, e.Value())
	case "lt":
		return Errorf(field, "must be less than %s, got %v", param, e.Value())
	case "lte", "max":
		return Errorf(field, "must not exceed %s, got %v", param, e.Value())
	case "oneof":
		return Errorf(field, "must be one of [%s], got %v", param, e.Value())
	default:
		return Errorf(field, "validation failed (%s)", e.Tag())
	}
}
