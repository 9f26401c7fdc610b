package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator that reports fields by their JSON names.
func NewValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return validate
}

// ValidationMessage turns the first failed rule into a short client facing message.
// ok is false when err is not a validation error.
func ValidationMessage(err error) (field string, message string, ok bool) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return "", "", false
	}

	first := validationErrors[0]
	field = first.Field()
	switch first.Tag() {
	case "required":
		return field, fmt.Sprintf("%s is required", field), true
	case "gt", "gte", "min":
		return field, fmt.Sprintf("%s must be at least %s", field, first.Param()), true
	case "lt", "lte", "max":
		return field, fmt.Sprintf("%s must be at most %s", field, first.Param()), true
	case "oneof":
		return field, fmt.Sprintf("%s must be one of %s", field, first.Param()), true
	default:
		return field, fmt.Sprintf("%s is invalid", field), true
	}
}
