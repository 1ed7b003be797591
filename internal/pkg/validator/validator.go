package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names so callers can key messages on them.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

// Register adds a custom validation tag.
func Register(tag string, fn validator.Func) error {
	return validate.RegisterValidation(tag, fn)
}

// Validate struct fields. The result maps each failing field to the first
// tag it failed, or is nil when v is valid.
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, e := range verrs {
		out[e.Field()] = e.Tag()
	}
	return out
}
