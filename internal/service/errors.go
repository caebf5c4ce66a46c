package service

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyRegistry means verification was attempted with zero enrolled
// users. It is distinct from a no-face failure because the caller
// remediation differs: enroll someone first.
var ErrEmptyRegistry = errors.New("no registered users")

// ValidationError reports missing or malformed caller input with
// field-level detail. It is never retried.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing or invalid fields: %s", strings.Join(e.Fields, ", "))
}

// NewValidationError creates a validation error naming the offending fields.
func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}
