// Package validation checks request structs with go-playground/validator
// and reports failures as apperr validation errors listing each field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/gourmet-table/internal/apperr"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// Report JSON names, not Go field names.
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		instance = v
	})
	return instance
}

// Struct validates s.  The returned error is nil or an *apperr.Error of
// kind Validation whose details map each failing field to a message.
func Struct(s any) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return apperr.Validation("invalid request")
	}
	fields := make(map[string]any, len(ves))
	missing := []string{}
	for _, fe := range ves {
		fields[fe.Field()] = message(fe)
		if fe.Tag() == "required" || fe.Tag() == "notblank" {
			missing = append(missing, fe.Field())
		}
	}
	msg := "invalid request"
	if len(missing) > 0 {
		msg = "missing required fields: " + strings.Join(missing, ", ")
	}
	return apperr.Validation(msg).WithDetails(map[string]any{"fields": fields})
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "min":
		return fmt.Sprintf("must have at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must have at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "datetime":
		return fmt.Sprintf("must match %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	}
	return fmt.Sprintf("failed %s", fe.Tag())
}

// EchoValidator adapts Struct to echo's Validator interface so handlers
// can call c.Validate.
type EchoValidator struct{}

func (EchoValidator) Validate(i any) error { return Struct(i) }
