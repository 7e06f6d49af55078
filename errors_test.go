package formstate

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestValidationError_Error_SingleError(t *testing.T) {
	ve := &ValidationError{
		FieldErrors: []FieldError{
			{
				FieldPath: "username",
				Code:      RuleMinLength,
				Message:   "value must be at least 3 characters",
			},
		},
	}

	got := ve.Error()
	want := "form validation failed: 1 error\n  - username: minLength (value must be at least 3 characters)"

	if got != want {
		t.Errorf("ValidationError.Error() with single error\ngot:  %q\nwant: %q", got, want)
	}
}

func TestValidationError_Error_MultipleErrors(t *testing.T) {
	ve := &ValidationError{
		FieldErrors: []FieldError{
			{
				FieldPath: "email",
				Code:      RuleEmail,
				Message:   "value is not a valid email address",
			},
			{
				FieldPath: "username.placeholder",
				Code:      ErrCodeUnknownKey,
				Message:   "unknown field attribute (strict mode)",
			},
		},
	}

	got := ve.Error()
	want := "form validation failed: 2 errors\n" +
		"  - email: email (value is not a valid email address)\n" +
		"  - username.placeholder: unknown_key (unknown field attribute (strict mode))"

	if got != want {
		t.Errorf("ValidationError.Error() with multiple errors\ngot:  %q\nwant: %q", got, want)
	}
}

func TestValidationError_Error_NoErrors(t *testing.T) {
	ve := &ValidationError{}
	if got := ve.Error(); got != "form validation failed: no errors" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestValidationError_Has(t *testing.T) {
	ve := &ValidationError{FieldErrors: []FieldError{{FieldPath: "rows.groups[0]"}}}

	if !ve.Has("rows.groups[0]") {
		t.Error("expected Has to find the recorded path")
	}
	if ve.Has("rows") {
		t.Error("Has must match whole paths only")
	}
}

func TestValidationError_ErrorsAs(t *testing.T) {
	var err error = fmt.Errorf("reload failed: %w", &ValidationError{FieldErrors: []FieldError{{FieldPath: "a"}}})

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatal("expected errors.As to unwrap *ValidationError")
	}
	if len(ve.FieldErrors) != 1 {
		t.Errorf("expected 1 field error, got %d", len(ve.FieldErrors))
	}
}

func TestSentinelErrors_Wrapped(t *testing.T) {
	sentinels := []error{ErrUnknownRule, ErrFormNotRegistered, ErrFieldNotFound, ErrGroupNotFound, ErrGroupIndex, ErrNilForm}
	for _, sentinel := range sentinels {
		wrapped := fmt.Errorf("%w: %q", sentinel, "x")
		if !errors.Is(wrapped, sentinel) {
			t.Errorf("errors.Is failed for %v", sentinel)
		}
		if !strings.HasPrefix(sentinel.Error(), "formstate: ") {
			t.Errorf("sentinel %q should carry the package prefix", sentinel)
		}
	}
}
