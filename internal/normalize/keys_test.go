package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToLowerDotPath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "double underscore to dot",
			input:    "USERNAME__VALUE",
			expected: "username.value",
		},
		{
			name:     "single underscore preserved",
			input:    "ADDRESS_LINE",
			expected: "address_line",
		},
		{
			name:     "mixed double and single underscores",
			input:    "ADDRESS_LINE__VALIDATION_MESSAGE",
			expected: "address_line.validation_message",
		},
		{
			name:     "multiple levels",
			input:    "EMAIL__VALIDATION__MAXLENGTH",
			expected: "email.validation.maxlength",
		},
		{
			name:     "already lowercase",
			input:    "simple",
			expected: "simple",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "only underscores",
			input:    "____",
			expected: "..",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToLowerDotPath(tt.input); got != tt.expected {
				t.Errorf("ToLowerDotPath(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSplitHead(t *testing.T) {
	tests := []struct {
		path     string
		wantHead string
		wantRest string
	}{
		{"username.validation.minLength", "username", "validation.minLength"},
		{"username.value", "username", "value"},
		{"username", "username", ""},
		{"", "", ""},
		{".value", "", "value"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			head, rest := SplitHead(tt.path)
			assert.Equal(t, tt.wantHead, head)
			assert.Equal(t, tt.wantRest, rest)
		})
	}
}

func TestApplyPrefix(t *testing.T) {
	assert.Equal(t, "username.value", ApplyPrefix("username", "value"))
	assert.Equal(t, "value", ApplyPrefix("", "value"))
	assert.Equal(t, "username", ApplyPrefix("username", ""))
	assert.Equal(t, "", ApplyPrefix("", ""))
}

func TestFlatten(t *testing.T) {
	rows := []any{[]any{map[string]any{"a": "x"}}}
	input := map[string]any{
		"username": map[string]any{
			"value": "ab",
			"validation": map[string]any{
				"minLength": 3,
			},
		},
		"legacy": map[any]any{
			"value": "old",
			7:       "ignored",
		},
		"rows": map[string]any{
			"groups": rows,
		},
		"plain": "v",
	}

	got := make(map[string]any)
	Flatten("", input, got)

	assert.Equal(t, map[string]any{
		"username.value":                "ab",
		"username.validation.minLength": 3,
		"legacy.value":                  "old",
		"rows.groups":                   rows,
		"plain":                         "v",
	}, got)
}

func TestFlatten_ScalarWithoutPrefixIsDropped(t *testing.T) {
	got := make(map[string]any)
	Flatten("", "lonely", got)
	assert.Empty(t, got)
}
