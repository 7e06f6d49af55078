package formstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRules(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		want RuleSet
	}{
		{name: "empty tag", tag: "", want: RuleSet{}},
		{name: "whitespace tag", tag: "   ", want: RuleSet{}},
		{name: "email without param", tag: "email", want: RuleSet{RuleEmail: 0}},
		{name: "email with param", tag: "email:1", want: RuleSet{RuleEmail: 1}},
		{name: "single length rule", tag: "minLength:3", want: RuleSet{RuleMinLength: 3}},
		{
			name: "multiple rules",
			tag:  "email, minLength:3 ,maxLength: 64",
			want: RuleSet{RuleEmail: 0, RuleMinLength: 3, RuleMaxLength: 64},
		},
		{name: "empty directives skipped", tag: "length:4,,", want: RuleSet{RuleLength: 4}},
		{name: "unknown rule kept", tag: "pattern", want: RuleSet{"pattern": 0}},
		{name: "unknown rule with param", tag: "custom:7", want: RuleSet{"custom": 7}},
		{name: "later directive wins", tag: "minLength:3,minLength:5", want: RuleSet{RuleMinLength: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRules(tt.tag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRules_Errors(t *testing.T) {
	tests := []struct {
		name    string
		tag     string
		wantErr string
	}{
		{name: "missing name", tag: ":3", wantErr: "missing rule name"},
		{name: "missing param", tag: "minLength", wantErr: `rule "minLength": missing parameter`},
		{name: "empty param", tag: "length:", wantErr: `rule "length": missing parameter`},
		{name: "non-integer param", tag: "maxLength:ten", wantErr: `rule "maxLength": invalid parameter "ten"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRules(tt.tag)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRuleSet_String(t *testing.T) {
	rules := RuleSet{RuleMaxLength: 64, RuleEmail: 0, RuleMinLength: 3}
	assert.Equal(t, "email,maxLength:64,minLength:3", rules.String())
	assert.Equal(t, "", RuleSet{}.String())

	parsed, err := ParseRules(rules.String())
	require.NoError(t, err)
	assert.Equal(t, rules, parsed)
}
