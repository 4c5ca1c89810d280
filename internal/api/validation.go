package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var errValidation = errors.New("validation failed")

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report JSON field names, not Go field names.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// validateStruct returns the first validation failure as an errValidation.
func validateStruct(payload any) error {
	err := getValidator().Struct(payload)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %w", errValidation, err)
	}
	fe := fieldErrs[0]
	field := strings.TrimPrefix(fe.Namespace(), strings.Split(fe.Namespace(), ".")[0]+".")
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: '%s' is required", errValidation, field)
	case "min":
		return fmt.Errorf("%w: '%s' must have at least %s item(s)", errValidation, field, fe.Param())
	case "max":
		return fmt.Errorf("%w: '%s' must be at most %s characters", errValidation, field, fe.Param())
	case "gt":
		return fmt.Errorf("%w: '%s' must be greater than %s", errValidation, field, fe.Param())
	case "oneof":
		return fmt.Errorf("%w: '%s' must be one of [%s]", errValidation, field, fe.Param())
	case "datetime":
		return fmt.Errorf("%w: '%s' must be a date formatted %s", errValidation, field, fe.Param())
	}
	return fmt.Errorf("%w: '%s' failed on '%s'", errValidation, field, fe.Tag())
}
