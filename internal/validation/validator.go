package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"studygen/internal/domain"
)

// Validator checks request DTOs against their `validate` struct tags and
// reports failures as domain.FieldErrors keyed by JSON field name.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("bullet_count", bulletCount)
	return &Validator{validate: v}
}

const (
	minBullets = 3
	maxBullets = 7
)

// bulletCount bounds a bullet count only when the sibling Mode field asks
// for bullets. Zero means the default count.
func bulletCount(fl validator.FieldLevel) bool {
	mode := fl.Parent().FieldByName("Mode")
	if !mode.IsValid() || mode.Kind() != reflect.String || mode.String() != string(domain.ModeBullets) {
		return true
	}
	n := fl.Field().Int()
	return n == 0 || (n >= minBullets && n <= maxBullets)
}

// Struct validates s. It returns nil, domain.FieldErrors, or the
// validator's own error for values it cannot inspect.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fieldErrs := make(domain.FieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		fieldErrs = append(fieldErrs, domain.FieldError{
			Field:   fieldPath(fe),
			Message: message(fe),
			Value:   printable(fe.Value()),
		})
	}
	return fieldErrs
}

// fieldPath drops the root struct name from the namespace, so
// "QuizExportRequest.options.format" becomes "options.format".
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
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "min", "max":
		bound := "at least"
		if fe.Tag() == "max" {
			bound = "at most"
		}
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("must be %s %s characters long", bound, fe.Param())
		case reflect.Slice, reflect.Map:
			return fmt.Sprintf("must contain %s %s items", bound, fe.Param())
		}
		return fmt.Sprintf("must be %s %s", bound, fe.Param())
	case "bullet_count":
		return fmt.Sprintf("must be between %d and %d in bullets mode", minBullets, maxBullets)
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
}

// printable keeps echoed values short; request bodies can carry whole documents.
func printable(v interface{}) interface{} {
	if s, ok := v.(string); ok {
		if r := []rune(s); len(r) > 64 {
			return string(r[:64]) + "..."
		}
	}
	return v
}
