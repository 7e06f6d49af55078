package normalize

import (
	"strings"
)

// ToLowerDotPath normalizes an environment key to a lowercase dot-separated path.
// Double underscores (__) are treated as level separators and converted to dots.
// Single underscores within a level are preserved.
// Examples:
//   - "USERNAME__VALUE" → "username.value"
//   - "ADDRESS_LINE__VALIDATION" → "address_line.validation"
func ToLowerDotPath(key string) string {
	normalized := strings.ReplaceAll(key, "__", ".")
	return strings.ToLower(normalized)
}

// SplitHead splits a dotted path into its first segment and the remainder.
// Examples:
//   - "username.validation.minLength" → ("username", "validation.minLength")
//   - "username" → ("username", "")
func SplitHead(path string) (head, rest string) {
	head, rest, _ = strings.Cut(path, ".")
	return head, rest
}

// ApplyPrefix combines a prefix with a key to create a nested path.
// If prefix is empty, returns the key unchanged.
// Otherwise, returns "prefix.key".
// Examples:
//   - ApplyPrefix("username", "value") → "username.value"
//   - ApplyPrefix("", "value") → "value"
func ApplyPrefix(prefix, key string) string {
	if prefix == "" {
		return key
	}
	if key == "" {
		return prefix
	}
	return prefix + "." + key
}

// Flatten walks nested maps and writes every leaf into result under its
// dot-separated path. Sequences are leaves and are kept as-is.
func Flatten(prefix string, value any, result map[string]any) {
	switch v := value.(type) {
	case map[string]any:
		for key, val := range v {
			Flatten(ApplyPrefix(prefix, key), val, result)
		}
	case map[any]any:
		for key, val := range v {
			keyStr, ok := key.(string)
			if !ok {
				continue
			}
			Flatten(ApplyPrefix(prefix, keyStr), val, result)
		}
	default:
		if prefix != "" {
			result[prefix] = value
		}
	}
}
