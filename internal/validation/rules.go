package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"unicode"

	apperrors "kinobilet/internal/errors"

	"github.com/go-playground/validator/v10"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report json field names instead of Go ones
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("strong_password", func(fl validator.FieldLevel) bool {
		return isStrongPassword(fl.Field().String())
	})

	return v
}

func isStrongPassword(s string) bool {
	var lower, upper, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}

// Error carries one message per invalid field.
type Error struct {
	Fields map[string]string `json:"fields"`
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return strings.Join(parts, "; ")
}

func (e *Error) Unwrap() error {
	return apperrors.ErrInvalidInput
}

// Struct validates a request model against its validate tags.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate input: %w", err)
	}

	out := &Error{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		field := fieldPath(fe)
		if _, seen := out.Fields[field]; !seen {
			out.Fields[field] = message(fe)
		}
	}
	return out
}

// fieldPath drops the root struct name from the namespace, e.g. seats[0].rowNumber.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must contain at least %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must contain at most %s characters", fe.Param())
	case "username":
		return "may only contain letters, digits and underscores"
	case "strong_password":
		return "must contain an uppercase letter, a lowercase letter and a digit"
	case "eqfield":
		return "passwords do not match"
	default:
		return fmt.Sprintf("failed on %s", fe.Tag())
	}
}
