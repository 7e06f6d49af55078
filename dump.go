package formstate

import (
	"encoding/json"
	"fmt"
	"io"
)

// DumpOption configures dump behavior using the functional options pattern.
type DumpOption func(*dumpConfig)

type dumpConfig struct {
	withSources bool   // Include source attribution for each field
	asJSON      bool   // Output as JSON instead of text format
	indent      string // Indentation for JSON output (default: "  ")
}

// WithSources includes source attribution for each field in the output.
// Only forms built with NewFormFromSpec know their sources.
func WithSources() DumpOption {
	return func(cfg *dumpConfig) {
		cfg.withSources = true
	}
}

// AsJSON outputs the form as JSON instead of text format.
func AsJSON() DumpOption {
	return func(cfg *dumpConfig) {
		cfg.asJSON = true
	}
}

// WithIndent sets the indentation for JSON output.
// Default is two spaces ("  "). An empty indent produces compact JSON.
func WithIndent(indent string) DumpOption {
	return func(cfg *dumpConfig) {
		cfg.indent = indent
	}
}

// DumpForm writes a human-readable representation of the form's fields,
// values and validity flags.
func DumpForm(w io.Writer, form *Form, opts ...DumpOption) error {
	if form == nil {
		return ErrNilForm
	}

	config := dumpConfig{indent: "  "}
	for _, opt := range opts {
		opt(&config)
	}

	if config.asJSON {
		return dumpAsJSON(w, form, config)
	}
	return dumpAsText(w, form, config)
}

// dumpAsText outputs one line per plain field and per group sub-field.
func dumpAsText(w io.Writer, form *Form, config dumpConfig) error {
	for _, f := range form.Fields() {
		var source string
		if config.withSources {
			source = fieldSource(form, f.ID)
		}
		if f.IsGroup() {
			if err := dumpGroupsText(w, f.ID, f.Groups, source); err != nil {
				return err
			}
			continue
		}
		if err := writeFieldLine(w, f.ID, f, source); err != nil {
			return err
		}
	}
	return nil
}

func dumpGroupsText(w io.Writer, prefix string, groups []Group, source string) error {
	for i, g := range groups {
		rowPrefix := fmt.Sprintf("%s[%d]", prefix, i)
		if g.IsNested() {
			if err := dumpGroupsText(w, rowPrefix, g.Nested, source); err != nil {
				return err
			}
			continue
		}
		for _, sub := range g.Fields {
			if err := writeFieldLine(w, rowPrefix+"."+sub.ID, sub, source); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeFieldLine(w io.Writer, path string, f Field, source string) error {
	line := fmt.Sprintf("%s: %s [valid=%t dirty=%t", path, displayValue(f.Value), f.IsValid, f.IsDirty)
	if len(f.Validation) > 0 {
		line += " rules=" + f.Validation.String()
	}
	line += "]"
	if source != "" {
		line += fmt.Sprintf(" (source: %s)", source)
	}
	line += "\n"

	if _, err := io.WriteString(w, line); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	return nil
}

// dumpAsJSON outputs the form as a JSON object keyed by field id.
func dumpAsJSON(w io.Writer, form *Form, config dumpConfig) error {
	result := make(map[string]any)
	for _, f := range form.Fields() {
		entry := fieldJSON(f)
		if config.withSources {
			if source := fieldSource(form, f.ID); source != "" {
				entry["source"] = source
			}
		}
		result[f.ID] = entry
	}

	var data []byte
	var err error
	if config.indent != "" {
		data, err = json.MarshalIndent(result, "", config.indent)
	} else {
		data, err = json.Marshal(result)
	}
	if err != nil {
		return fmt.Errorf("json marshal error: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	return nil
}

func fieldJSON(f Field) map[string]any {
	if f.IsGroup() {
		return map[string]any{"groups": groupsJSON(f.Groups)}
	}
	entry := map[string]any{
		"value":     f.Value,
		"isValid":   f.IsValid,
		"isDirty":   f.IsDirty,
		"showError": f.ShowError,
	}
	if len(f.Validation) > 0 {
		entry["rules"] = f.Validation.String()
	}
	if f.ValidationMessage != "" {
		entry["validationMessage"] = f.ValidationMessage
	}
	return entry
}

func groupsJSON(groups []Group) []any {
	out := make([]any, 0, len(groups))
	for _, g := range groups {
		if g.IsNested() {
			out = append(out, map[string]any{"nested": groupsJSON(g.Nested)})
			continue
		}
		row := make(map[string]any, len(g.Fields))
		for _, sub := range g.Fields {
			row[sub.ID] = fieldJSON(sub)
		}
		out = append(out, row)
	}
	return out
}

// fieldSource prefers the source of the field's value, then of its groups.
func fieldSource(form *Form, id string) string {
	for _, attr := range []string{"value", "groups", "validation"} {
		if s := form.origin(id + "." + attr); s != "" {
			return s
		}
	}
	return ""
}

func displayValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "<unset>"
	case string:
		return fmt.Sprintf("%q", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
