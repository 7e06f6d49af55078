package formstate

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
	"unicode/utf8"
)

// Supported rule names.
const (
	RuleEmail     = "email"
	RuleMinLength = "minLength"
	RuleMaxLength = "maxLength"
	RuleLength    = "length"
)

// emailPattern accepts local-part@domain where the domain is either dotted
// labels ending in an alphabetic TLD or a bracketed IPv4 literal.
var emailPattern = regexp.MustCompile(`^(([^<>()\[\]\\.,;:\s@"]+(\.[^<>()\[\]\\.,;:\s@"]+)*)|(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\])|(([a-zA-Z\-0-9]+\.)+[a-zA-Z]{2,}))$`)

// RuleSet maps a rule name to its numeric parameter. The email rule ignores
// its parameter; being present is enough.
type RuleSet map[string]int

// Names returns the rule names in evaluation order.
func (r RuleSet) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy. A nil set stays nil.
func (r RuleSet) Clone() RuleSet {
	if r == nil {
		return nil
	}
	out := make(RuleSet, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// IsKnownRule reports whether name is one of the supported rules.
func IsKnownRule(name string) bool {
	switch name {
	case RuleEmail, RuleMinLength, RuleMaxLength, RuleLength:
		return true
	}
	return false
}

// CheckRule evaluates a single rule against value.
//
// An unknown rule never blocks validity: CheckRule returns true together with
// an error wrapping ErrUnknownRule so the caller can log or escalate it.
func CheckRule(value any, rule string, param int) (bool, error) {
	switch rule {
	case RuleEmail:
		return truthy(value) && emailPattern.MatchString(stringify(value)), nil
	case RuleMinLength:
		return truthy(value) && valueLength(value) >= param, nil
	case RuleMaxLength:
		// Falsy values count as empty, so they always pass.
		return valueLength(value) <= param, nil
	case RuleLength:
		return truthy(value) && valueLength(value) == param, nil
	default:
		return true, fmt.Errorf("%w %q", ErrUnknownRule, rule)
	}
}

// ValidateField reports whether value satisfies every rule in rules. It stops
// at the first failing rule. An empty rule set is always valid. Unknown rules
// encountered on the way are returned joined in the error.
func ValidateField(value any, rules RuleSet) (bool, error) {
	var errs []error
	for _, name := range rules.Names() {
		ok, err := CheckRule(value, name, rules[name])
		if err != nil {
			errs = append(errs, err)
		}
		if !ok {
			return false, errors.Join(errs...)
		}
	}
	return true, errors.Join(errs...)
}

// truthy mirrors the loose truthiness form inputs are judged by: nil, empty
// strings, false, zero and NaN are falsy.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case float32:
		return x != 0 && !math.IsNaN(float64(x))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	}
	return true
}

// stringify coerces a value to the string its length is measured on.
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

func valueLength(v any) int {
	if !truthy(v) {
		return 0
	}
	return utf8.RuneCountInString(stringify(v))
}
