package app

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/example/dayof/internal/core/errors"
)

var (
	eventPhonePattern  = regexp.MustCompile(`^[0-9+() -]{7,20}$`)
	vendorPhonePattern = regexp.MustCompile(`^[0-9+\-()\s]{7,20}$`)
)

// fieldMessages maps "Struct.Field" to the message shown when it fails.
var fieldMessages = map[string]string{
	"CreateEventRequest.EventName":     "Event name must be at least 2 characters",
	"CreateEventRequest.EventDate":     "Please select event date",
	"CreateEventRequest.Location":      "Please provide event location",
	"CreateEventRequest.CustomerName":  "Customer name must be at least 2 characters",
	"CreateEventRequest.CustomerEmail": "Please provide a valid customer email",
	"CreateEventRequest.CustomerPhone": "Please provide a valid customer phone (7-20 digits/characters)",
	"RegisterRequest.Name":             "Name must be at least 2 characters",
	"RegisterRequest.Email":            "Please enter a valid email",
	"RegisterRequest.Phone":            "Please enter a valid phone (7-20 digits/characters)",
	"RegisterRequest.Password":         "Password must be 8+ chars and include uppercase, lowercase, number, and special character",
	"LoginRequest.Email":               "Please enter a valid email",
	"LoginRequest.Password":            "Please enter your password",
}

// newValidator returns a validator with the dayof-specific rules registered.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("event_phone", func(fl validator.FieldLevel) bool {
		return eventPhonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("vendor_phone", func(fl validator.FieldLevel) bool {
		return vendorPhonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("strong_password", func(fl validator.FieldLevel) bool {
		return isStrongPassword(fl.Field().String())
	})
	return v
}

// isStrongPassword requires 8+ characters with an ASCII upper, lower, digit
// and at least one character outside those classes.
func isStrongPassword(s string) bool {
	var upper, lower, digit, special bool
	n := 0
	for _, r := range s {
		n++
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			special = true
		}
	}
	return n >= 8 && upper && lower && digit && special
}

// validateRequest runs struct validation and converts the first failure
// into a ValidationError carrying a user-facing message.
func validateRequest(v *validator.Validate, req any) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return apperrors.Validation("invalid request: %v", err)
	}
	return apperrors.Validation("%s", formatFieldError(errs[0]))
}

func formatFieldError(fe validator.FieldError) string {
	if msg, ok := fieldMessages[fe.StructNamespace()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field '%s' is required", fe.Field())
	case "email":
		return fmt.Sprintf("Field '%s' must be a valid email address", fe.Field())
	case "min":
		return fmt.Sprintf("Field '%s' must be at least %s in length", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", fe.Field(), fe.Tag())
}
