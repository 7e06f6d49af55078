package formstate

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for spec and legacy validation failures. Failed rules use the
// rule name itself as the code.
const (
	ErrCodeUnknownKey  = "unknown_key"
	ErrCodeInvalidType = "invalid_type"
)

var (
	// ErrUnknownRule is reported (never fatal) when a rule set names a rule
	// outside email, minLength, maxLength and length.
	ErrUnknownRule = errors.New("formstate: unknown rule")

	// ErrFormNotRegistered is returned when a field refers to a form id the
	// store has no entry for.
	ErrFormNotRegistered = errors.New("formstate: form not registered")

	// ErrFieldNotFound is returned when a form has no field with the given id.
	ErrFieldNotFound = errors.New("formstate: field not found")

	// ErrGroupNotFound is returned by RemoveGroup for a missing or non-group field.
	ErrGroupNotFound = errors.New("formstate: group set not found")

	// ErrGroupIndex is returned by RemoveGroup for an out-of-range row index.
	ErrGroupIndex = errors.New("formstate: group index out of range")

	// ErrNilForm is returned when a nil *Form is passed to the coordinator.
	ErrNilForm = errors.New("formstate: form is nil")
)

// ValidationError aggregates field-level validation failures.
type ValidationError struct {
	FieldErrors []FieldError
}

// Error formats validation errors as a multi-line message.
func (e *ValidationError) Error() string {
	if len(e.FieldErrors) == 0 {
		return "form validation failed: no errors"
	}

	var b strings.Builder
	if len(e.FieldErrors) == 1 {
		b.WriteString("form validation failed: 1 error\n")
	} else {
		fmt.Fprintf(&b, "form validation failed: %d errors\n", len(e.FieldErrors))
	}

	for _, fe := range e.FieldErrors {
		fmt.Fprintf(&b, "  - %s: %s (%s)\n", fe.FieldPath, fe.Code, fe.Message)
	}

	return strings.TrimRight(b.String(), "\n")
}

// Has reports whether any error was recorded for fieldPath.
func (e *ValidationError) Has(fieldPath string) bool {
	for _, fe := range e.FieldErrors {
		if fe.FieldPath == fieldPath {
			return true
		}
	}
	return false
}

// FieldError represents a single field validation failure.
type FieldError struct {
	FieldPath string // Dot notation (e.g., "username.validation.minLength")
	Code      string // Error code (e.g., "minLength", "unknown_key")
	Message   string // Human-readable description
}
