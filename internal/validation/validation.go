// Package validation runs the validate:"..." rules declared on the payload
// types in internal/types and turns validator failures into
// apperrors.ValidationErrors.
//
// It never touches storage: a payload that fails here is rejected before
// any query runs.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/aanand-mishra/student-mgmt/internal/apperrors"
	"github.com/aanand-mishra/student-mgmt/internal/types"
	"github.com/go-playground/validator/v10"
)

// validate is safe for concurrent use and caches struct metadata, so one
// instance serves every request.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name ("student_id") instead of the Go
	// field name ("StudentID").
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Nullable fields are validated on their inner value. Returning nil for
	// an absent or null value makes "omitempty" skip the remaining rules.
	v.RegisterCustomTypeFunc(nullableValue,
		types.Nullable[int]{},
		types.Nullable[string]{},
	)

	// validator's "email" accepts single-label domains ("a@localhost").
	// Addresses stored here must have a dot-separated domain.
	if err := v.RegisterValidation("emaildomain", emailDomain); err != nil {
		panic(err)
	}

	return v
}

func emailDomain(fl validator.FieldLevel) bool {
	addr := fl.Field().String()
	at := strings.LastIndexByte(addr, '@')
	if at < 0 {
		return false
	}
	labels := strings.Split(addr[at+1:], ".")
	if len(labels) < 2 {
		return false
	}
	for _, l := range labels {
		if l == "" {
			return false
		}
	}
	return true
}

func nullableValue(field reflect.Value) any {
	switch n := field.Interface().(type) {
	case types.Nullable[int]:
		if n.Set && n.Valid {
			return n.Value
		}
	case types.Nullable[string]:
		if n.Set && n.Valid {
			return n.Value
		}
	}
	return nil
}

// Struct validates a payload. It returns nil or apperrors.ValidationErrors.
func Struct(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		// InvalidValidationError: a programming error, not bad input.
		return fmt.Errorf("validation.Struct: %w", err)
	}

	out := make(apperrors.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, apperrors.ValidationError{
			Field:  fe.Field(),
			Reason: reason(fe),
		})
	}
	return out
}

// reason converts a validator.FieldError into a short English phrase.
func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email", "emaildomain":
		return "must be a valid email address"
	case "min":
		if isString(fe) {
			return fmt.Sprintf("must be at least %s characters long", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if isString(fe) {
			return fmt.Sprintf("must be at most %s characters long", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "isdefault":
		return "is immutable"
	default:
		return "is invalid"
	}
}

func isString(fe validator.FieldError) bool {
	return fe.Kind() == reflect.String
}
