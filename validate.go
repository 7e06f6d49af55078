package formstate

import (
	"fmt"
	"log/slog"
	"sort"
)

// Validate checks values against per-field rule sets in one pass, the way
// forms used to be checked on submit.
//
// Fields named in rules but absent from values are skipped with a warning.
// Every failed rule is logged and collected; the result is nil when nothing
// failed, otherwise a *ValidationError whose codes are the failed rule names.
//
// Deprecated: bind fields with Binder.Validation or refresh a whole form with
// Coordinator.UpdateFormValidity.
func Validate(values map[string]any, rules map[string]RuleSet) error {
	logger := slog.Default()

	fieldIDs := make([]string, 0, len(rules))
	for id := range rules {
		fieldIDs = append(fieldIDs, id)
	}
	sort.Strings(fieldIDs)

	var fieldErrors []FieldError
	for _, id := range fieldIDs {
		value, ok := values[id]
		if !ok {
			logger.Warn("field not in form", fieldAttr(id))
			continue
		}

		fieldRules := rules[id]
		for _, name := range fieldRules.Names() {
			valid, err := CheckRule(value, name, fieldRules[name])
			if err != nil {
				logger.Error("unknown validation rule, treating as valid", fieldAttr(id), errAttr(err))
			}
			if valid {
				continue
			}
			logger.Error("validation rule failed", fieldAttr(id), slog.String("rule", name))
			fieldErrors = append(fieldErrors, FieldError{
				FieldPath: id,
				Code:      name,
				Message:   ruleMessage(name, fieldRules[name]),
			})
		}
	}

	if len(fieldErrors) == 0 {
		return nil
	}
	return &ValidationError{FieldErrors: fieldErrors}
}

func ruleMessage(rule string, param int) string {
	switch rule {
	case RuleEmail:
		return "value is not a valid email address"
	case RuleMinLength:
		return fmt.Sprintf("value must be at least %d characters", param)
	case RuleMaxLength:
		return fmt.Sprintf("value must be at most %d characters", param)
	case RuleLength:
		return fmt.Sprintf("value must be exactly %d characters", param)
	}
	return fmt.Sprintf("rule %s failed", rule)
}
