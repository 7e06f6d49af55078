package formstate

// Field is a single validated value with its rule set and derived validity
// flags. A Field with non-nil Groups is a group field: a repeatable block of
// sub-fields.
//
// Fields are values. Forms hand out clones and changes are written back
// through Form or Coordinator operations.
type Field struct {
	ID                string
	Form              string
	Value             any
	Validation        RuleSet
	ValidationMessage string

	IsValid   bool
	IsDirty   bool
	ShowError bool

	Groups []Group
}

// IsGroup reports whether f holds repeated groups rather than a value.
func (f Field) IsGroup() bool {
	return f.Groups != nil
}

// Validity returns the flags the store keeps for f.
func (f Field) Validity() FieldValidity {
	return FieldValidity{IsValid: f.IsValid, IsDirty: f.IsDirty, ShowError: f.ShowError}
}

// Clone returns a deep copy of f. Value itself is shared.
func (f Field) Clone() Field {
	out := f
	out.Validation = f.Validation.Clone()
	if f.Groups != nil {
		out.Groups = cloneGroups(f.Groups)
	}
	return out
}

// Group is one repeated row of sub-fields. A group set appended onto an
// existing group field through Form.AddField is kept as a single nested
// entry whose rows live in Nested.
type Group struct {
	Fields []Field
	Nested []Group
}

// IsNested reports whether g wraps a whole appended group set instead of a row.
func (g Group) IsNested() bool {
	return g.Nested != nil
}

// values renders a row as sub-field id → value.
func (g Group) values() any {
	if g.IsNested() {
		return groupValues(g.Nested)
	}
	row := make(map[string]any, len(g.Fields))
	for _, f := range g.Fields {
		row[f.ID] = f.Value
	}
	return row
}

func groupValues(groups []Group) []any {
	out := make([]any, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.values())
	}
	return out
}

func cloneGroups(groups []Group) []Group {
	out := make([]Group, len(groups))
	for i, g := range groups {
		if g.Fields != nil {
			out[i].Fields = make([]Field, len(g.Fields))
			for j, f := range g.Fields {
				out[i].Fields[j] = f.Clone()
			}
		}
		if g.Nested != nil {
			out[i].Nested = cloneGroups(g.Nested)
		}
	}
	return out
}

// FieldSpec describes a field to create. Groups holds rows of sub-field
// specs; a non-nil Groups (even empty) makes the spec a group field.
type FieldSpec struct {
	ID                string
	Value             any
	Validation        RuleSet
	ValidationMessage string
	Groups            [][]FieldSpec
}

// stamp builds the Field for spec owned by formID.
func (s FieldSpec) stamp(formID string) Field {
	f := Field{
		ID:                s.ID,
		Form:              formID,
		Value:             s.Value,
		Validation:        s.Validation.Clone(),
		ValidationMessage: s.ValidationMessage,
	}
	if s.Groups != nil {
		f.Groups = stampGroups(s.Groups, formID)
	}
	return f
}

func stampGroups(rows [][]FieldSpec, formID string) []Group {
	groups := make([]Group, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, stampRow(row, formID))
	}
	return groups
}

func stampRow(row []FieldSpec, formID string) Group {
	g := Group{Fields: make([]Field, 0, len(row))}
	for _, spec := range row {
		g.Fields = append(g.Fields, spec.stamp(formID))
	}
	return g
}
