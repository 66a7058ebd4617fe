package models

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// SchemaValidationError reports the first field that does not conform to
// the recipe schema.
type SchemaValidationError struct {
	Field  string
	Reason string
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("schema validation failed at %s: %s", e.Field, e.Reason)
}

var validate = newValidator()

// newValidator builds a validator that reports json field names so error
// paths match the wire format handed to the completion service.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the recipe against the schema: required fields present,
// numeric bounds respected, and step orders contiguous 1..N. It returns a
// *SchemaValidationError naming the first non-conforming field path.
func (r *Recipe) Validate() error {
	if err := validate.Struct(r); err != nil {
		errs, ok := err.(validator.ValidationErrors)
		if !ok || len(errs) == 0 {
			return &SchemaValidationError{Field: "recipe", Reason: err.Error()}
		}
		first := errs[0]
		return &SchemaValidationError{
			Field:  fieldPath(first.Namespace()),
			Reason: fmt.Sprintf("failed %q constraint", first.Tag()),
		}
	}

	for i, step := range r.Steps {
		if step.Order != i+1 {
			return &SchemaValidationError{
				Field:  fmt.Sprintf("steps[%d].order", i),
				Reason: fmt.Sprintf("expected order %d, got %d", i+1, step.Order),
			}
		}
	}

	return nil
}

// fieldPath strips the root struct name from a validator namespace, e.g.
// "Recipe.ingredients[0].name" -> "ingredients[0].name".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
