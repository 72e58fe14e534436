package engine

import (
	"errors"
	"fmt"
)

// ValidationError rejects a malformed request before any persistence
// access. It is distinct from a persistence failure: the caller should
// report it as a bad request, not a service error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
