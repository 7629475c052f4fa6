package validation

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports a missing or malformed tool parameter.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// RequireNonEmpty trims value and returns it, or a ValidationError when
// nothing is left.
func RequireNonEmpty(field, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", &ValidationError{Field: field, Message: "must not be empty"}
	}
	return trimmed, nil
}

// RequireNonNegative rejects negative counts.
func RequireNonNegative(field string, value int) error {
	if value < 0 {
		return &ValidationError{Field: field, Message: fmt.Sprintf("must not be negative, got %d", value)}
	}
	return nil
}
