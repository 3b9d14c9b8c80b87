// Package forms binds and validates the HTML forms of the blog.
package forms

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their form name
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// Errors maps a form field name to its validation message.
type Errors map[string]string

func (errs Errors) Get(field string) string {
	return errs[field]
}

func (errs Errors) Has(field string) bool {
	_, ok := errs[field]

	return ok
}

// check validates form and returns its field errors, nil when valid.
func check(form any) (Errors, error) {
	err := validate.Struct(form)
	if err == nil {
		return nil, nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil, fmt.Errorf("failed to validate form: %w", err)
	}

	errs := make(Errors, len(validationErrs))

	for _, fieldErr := range validationErrs {
		if _, ok := errs[fieldErr.Field()]; ok {
			continue
		}

		errs[fieldErr.Field()] = message(fieldErr)
	}

	return errs, nil
}

func message(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fieldErr.Param())
	default:
		return "Enter a valid value."
	}
}

func value(values url.Values, key string) string {
	return strings.TrimSpace(values.Get(key))
}
