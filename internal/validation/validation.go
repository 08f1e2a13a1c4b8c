// Package validation checks typed request inputs and reports failures as a
// field to messages map.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/adanyl0v/task-manager-api/internal/models"
)

const (
	tagTaskStatus = "task_status"
	tagTaskDate   = "task_date"
)

// Errors maps a field name to its validation messages.
type Errors map[string][]string

func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

func (e Errors) Merge(other Errors) {
	for field, messages := range other {
		e[field] = append(e[field], messages...)
	}
}

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e[field], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Err returns e as an error, or nil when there is nothing to report.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})

	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation(tagTaskStatus, func(fl validator.FieldLevel) bool {
		return models.IsValidStatus(fl.Field().String())
	})
	_ = v.RegisterValidation(tagTaskDate, func(fl validator.FieldLevel) bool {
		_, _, ok := models.ParseDate(fl.Field().String())
		return ok
	})

	return &Validator{validate: v}
}

// Struct validates s and returns the failures keyed by json field name.
// It returns nil when s is valid.
func (v *Validator) Struct(s any) Errors {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return Errors{"body": {err.Error()}}
	}

	errs := make(Errors, len(validationErrs))
	for _, fe := range validationErrs {
		errs.Add(fe.Field(), message(fe))
	}
	return errs
}

func message(fe validator.FieldError) string {
	attribute := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", attribute)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", attribute)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s field must not be greater than %s characters.", attribute, fe.Param())
		}
		return fmt.Sprintf("The %s field must not be greater than %s.", attribute, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s field must be at least %s characters.", attribute, fe.Param())
		}
		return fmt.Sprintf("The %s field must be at least %s.", attribute, fe.Param())
	case "eqfield":
		return fmt.Sprintf("The %s field confirmation does not match.", attribute)
	case tagTaskStatus:
		return fmt.Sprintf("The selected %s is invalid.", attribute)
	case tagTaskDate:
		return fmt.Sprintf("The %s field must be a valid date.", attribute)
	default:
		return fmt.Sprintf("The %s field is invalid.", attribute)
	}
}

// PasswordPolicy reports every strength rule the password breaks:
// mixed case, at least one digit and at least one symbol.
func PasswordPolicy(password string) []string {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r):
			hasSymbol = true
		}
	}

	var messages []string
	if !hasUpper || !hasLower {
		messages = append(messages, "The password field must contain at least one uppercase and one lowercase letter.")
	}
	if !hasSymbol {
		messages = append(messages, "The password field must contain at least one symbol.")
	}
	if !hasDigit {
		messages = append(messages, "The password field must contain at least one number.")
	}
	return messages
}
