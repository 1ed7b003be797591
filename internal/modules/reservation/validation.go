package reservation

import (
	"encoding/json"
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"

	pkgvalidator "github.com/nightfury12901/restaurant-temp/internal/pkg/validator"
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

func init() {
	if err := pkgvalidator.Register("slot", func(fl validator.FieldLevel) bool {
		return IsSlot(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	if err := pkgvalidator.Register("basicemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
}

const msgOutsideWindow = "Date is outside the booking window"

var fieldMessages = map[string]map[string]string{
	"date": {
		"required": "Please select a date",
		"datetime": "Invalid date",
	},
	"time": {
		"required": "Please select a time",
		"slot":     "Invalid time slot",
	},
	"partySize": {
		"min": "Party size must be between 1 and 6",
		"max": "Party size must be between 1 and 6",
	},
	"name":  {"required": "Name is required"},
	"email": {"required": "Email is required", "basicemail": "Invalid email"},
	"phone": {"required": "Phone is required"},
}

// validateRequest returns nil when req passes every field rule.
func validateRequest(req CreateReservationRequest) *ValidationError {
	failed := pkgvalidator.Validate(req)
	if len(failed) == 0 {
		return nil
	}

	fields := make(map[string]string, len(failed))
	for field, tag := range failed {
		msg, ok := fieldMessages[field][tag]
		if !ok {
			msg = "Invalid value"
		}
		fields[field] = msg
	}
	return &ValidationError{Fields: fields}
}

// typeMessages covers body fields whose JSON type does not match the request,
// e.g. "partySize": "2".
var typeMessages = map[string]string{
	"date":      "Invalid date",
	"time":      "Invalid time slot",
	"partySize": "Party size must be between 1 and 6",
	"email":     "Invalid email",
	"status":    "Status must be pending, confirmed or cancelled",
}

// bindError turns a JSON type mismatch into a per-field validation error.
// Any other decode failure yields nil.
func bindError(err error) *ValidationError {
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) || typeErr.Field == "" {
		return nil
	}
	msg, ok := typeMessages[typeErr.Field]
	if !ok {
		msg = "Invalid value"
	}
	return &ValidationError{Fields: map[string]string{typeErr.Field: msg}}
}
