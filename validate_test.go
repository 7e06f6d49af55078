package formstate

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureDefaultLogger redirects slog.Default for the duration of the test.
func captureDefaultLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestValidate_AllValid(t *testing.T) {
	captureDefaultLogger(t)

	err := Validate(
		map[string]any{"username": "alice", "email": "a@b.com"},
		map[string]RuleSet{
			"username": {RuleMinLength: 3},
			"email":    {RuleEmail: 0},
		},
	)
	assert.NoError(t, err)
}

func TestValidate_CollectsFailures(t *testing.T) {
	buf := captureDefaultLogger(t)

	err := Validate(
		map[string]any{"username": "ab", "email": "nope", "pin": "123"},
		map[string]RuleSet{
			"username": {RuleMinLength: 3},
			"email":    {RuleEmail: 0},
			"pin":      {RuleLength: 4, RuleMaxLength: 2},
		},
	)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected *ValidationError, got %v", err)

	// Fields in id order, rules in name order; every failing rule is kept
	require.Len(t, ve.FieldErrors, 4)
	assert.Equal(t, FieldError{FieldPath: "email", Code: RuleEmail, Message: "value is not a valid email address"}, ve.FieldErrors[0])
	assert.Equal(t, FieldError{FieldPath: "pin", Code: RuleLength, Message: "value must be exactly 4 characters"}, ve.FieldErrors[1])
	assert.Equal(t, FieldError{FieldPath: "pin", Code: RuleMaxLength, Message: "value must be at most 2 characters"}, ve.FieldErrors[2])
	assert.Equal(t, FieldError{FieldPath: "username", Code: RuleMinLength, Message: "value must be at least 3 characters"}, ve.FieldErrors[3])

	assert.Contains(t, buf.String(), "validation rule failed")
}

func TestValidate_MissingFieldWarns(t *testing.T) {
	buf := captureDefaultLogger(t)

	err := Validate(map[string]any{}, map[string]RuleSet{"username": {RuleMinLength: 3}})

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "field not in form")
	assert.Contains(t, buf.String(), "field=username")
}

func TestValidate_UnknownRuleLoggedNotFailed(t *testing.T) {
	buf := captureDefaultLogger(t)

	err := Validate(map[string]any{"code": "x"}, map[string]RuleSet{"code": {"pattern": 0}})

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "unknown validation rule")
}

func TestRuleMessage(t *testing.T) {
	assert.Equal(t, "rule custom failed", ruleMessage("custom", 1))
	assert.Equal(t, "value must be at least 2 characters", ruleMessage(RuleMinLength, 2))
}
