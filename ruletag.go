package formstate

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseRules parses a compact rule directive string into a RuleSet.
// Tag format: "rule1:param1,rule2:param2,..."
// email may omit its parameter (e.g., "email" == "email:0"); the length
// rules require an integer parameter. Unknown rule names are kept as-is so
// they fail open at evaluation time.
func ParseRules(tag string) (RuleSet, error) {
	rules := RuleSet{}

	if strings.TrimSpace(tag) == "" {
		return rules, nil
	}

	for _, directive := range strings.Split(tag, ",") {
		directive = strings.TrimSpace(directive)
		if directive == "" {
			continue
		}

		// Split by colon to separate rule name from parameter
		parts := strings.SplitN(directive, ":", 2)
		name := strings.TrimSpace(parts[0])
		var value string
		if len(parts) > 1 {
			value = strings.TrimSpace(parts[1])
		}

		if name == "" {
			return nil, fmt.Errorf("rule directive %q: missing rule name", directive)
		}

		if value == "" {
			if name == RuleEmail || !IsKnownRule(name) {
				rules[name] = 0
				continue
			}
			return nil, fmt.Errorf("rule %q: missing parameter", name)
		}

		param, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("rule %q: invalid parameter %q: %w", name, value, err)
		}
		rules[name] = param
	}

	return rules, nil
}

// String renders the rule set back into directive form, sorted by rule name.
func (r RuleSet) String() string {
	parts := make([]string, 0, len(r))
	for _, name := range r.Names() {
		if name == RuleEmail {
			parts = append(parts, name)
			continue
		}
		parts = append(parts, name+":"+strconv.Itoa(r[name]))
	}
	return strings.Join(parts, ",")
}
