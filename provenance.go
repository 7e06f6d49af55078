package formstate

import "sort"

// FieldProvenance describes where a spec attribute came from.
type FieldProvenance struct {
	FieldPath  string // Dot notation (e.g., "username.validation.minLength")
	SourceName string // Source identifier (e.g., "env:FORM_USERNAME__VALUE")
}

// Origin returns the source that supplied path.
func (s *Spec) Origin(path string) (string, bool) {
	if s == nil {
		return "", false
	}
	for _, p := range s.Provenance {
		if p.FieldPath == path {
			return p.SourceName, true
		}
	}
	return "", false
}

// FieldSources returns the distinct sources that contributed to field id,
// sorted by name.
func (s *Spec) FieldSources(id string) []string {
	if s == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, p := range s.Provenance {
		if p.FieldPath != id && !hasPathPrefix(p.FieldPath, id) {
			continue
		}
		if !seen[p.SourceName] {
			seen[p.SourceName] = true
			out = append(out, p.SourceName)
		}
	}
	sort.Strings(out)
	return out
}

func hasPathPrefix(path, prefix string) bool {
	return len(path) > len(prefix) && path[len(prefix)] == '.' && path[:len(prefix)] == prefix
}

func sortProvenance(p []FieldProvenance) {
	sort.Slice(p, func(i, j int) bool { return p[i].FieldPath < p[j].FieldPath })
}
