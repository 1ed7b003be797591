package reservation

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrSlotUnavailable = errors.New("time slot is fully booked")
	ErrNotFound        = errors.New("not_found")
	ErrInvalidStatus   = errors.New("invalid_status")

	// ErrInvalidTransition is returned when a cancelled reservation would be
	// reopened. Its slot may have been rebooked since.
	ErrInvalidTransition = errors.New("invalid_transition")
)

// ValidationError carries one message per offending field, keyed by the
// field's JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation error: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func asValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
