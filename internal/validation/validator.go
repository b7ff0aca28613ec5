// Package validation applies the declarative struct-tag schemas used by event and
// booking input, converting validator failures into domain validation errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"eventbooking/internal/domain"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the event and booking rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their form name, falling back to json, then the Go name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"form", "json"} {
			name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	mustRegister(v, "nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "slug", func(fl validator.FieldLevel) bool {
		return domain.ValidSlug(fl.Field().String())
	})
	mustRegister(v, "simpleemail", func(fl validator.FieldLevel) bool {
		return domain.ValidEmail(fl.Field().String())
	})

	return &Validator{v: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// Validate validates a struct and returns the first failing field as a *domain.ValidationError.
func (v *Validator) Validate(s any) error {
	return v.formatError(v.v.Struct(s))
}

// ValidateExcept is Validate with the named Go struct fields skipped.
func (v *Validator) ValidateExcept(s any, fields ...string) error {
	return v.formatError(v.v.StructExcept(s, fields...))
}

// Email validates a single booking email.
func (v *Validator) Email(email string) error {
	if err := v.v.Var(email, "nonblank,simpleemail"); err != nil {
		return domain.NewValidationError("email", domain.CodeInvalidEmail, "Please provide a valid email address")
	}
	return nil
}

func (v *Validator) formatError(err error) error {
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return err
	}
	return fieldError(validationErrs[0])
}

func fieldError(e validator.FieldError) *domain.ValidationError {
	field, _, _ := strings.Cut(e.Field(), "[")
	switch {
	case field == "tags":
		return domain.NewValidationError(field, domain.CodeInvalidTags, "Tags are required and must be a non-empty list of strings")
	case field == "agenda":
		return domain.NewValidationError(field, domain.CodeInvalidAgenda, "Agenda is required and must be a non-empty list of strings")
	case e.Tag() == "nonblank" || e.Tag() == "required":
		return domain.MissingField(field)
	case e.Tag() == "oneof":
		return domain.NewValidationError(field, domain.CodeInvalidMode, "Invalid "+field+": must be one of "+strings.ReplaceAll(e.Param(), " ", ", "))
	case e.Tag() == "slug":
		return domain.NewValidationError(field, domain.CodeInvalidSlugFormat, "Invalid slug format. Slug must contain only lowercase letters, numbers, and hyphens")
	case e.Tag() == "simpleemail":
		return domain.NewValidationError(field, domain.CodeInvalidEmail, "Please provide a valid email address")
	default:
		return domain.NewValidationError(field, domain.CodeInvalidField, field+" is invalid")
	}
}
