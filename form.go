package formstate

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Form owns a collection of fields and group fields keyed by id.
// Fields keep their insertion order. Safe for concurrent use.
type Form struct {
	mu      sync.RWMutex
	id      string
	fields  map[string]Field
	order   []string
	origins map[string]string
	logger  *slog.Logger
}

// NewForm registers id in the coordinator's store with an empty, invalid,
// clean entry and creates one field per spec. An empty id is replaced by a
// random UUID.
func NewForm(coord *Coordinator, id string, specs ...FieldSpec) *Form {
	if id == "" {
		id = uuid.NewString()
	}

	coord.RegisterForm(id)

	f := &Form{
		id:     id,
		fields: make(map[string]Field, len(specs)),
		logger: coord.Logger().With(formAttr(id)),
	}
	f.AddFields(specs...)
	return f
}

// NewFormFromSpec creates a form from a loaded Spec and keeps its
// provenance for DumpForm.
func NewFormFromSpec(coord *Coordinator, spec *Spec) *Form {
	f := NewForm(coord, spec.FormID, spec.Fields...)
	f.origins = make(map[string]string, len(spec.Provenance))
	for _, p := range spec.Provenance {
		f.origins[p.FieldPath] = p.SourceName
	}
	return f
}

// ID returns the form id.
func (f *Form) ID() string {
	return f.id
}

// Field returns a copy of the field with the given id.
func (f *Form) Field(id string) (Field, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	fld, ok := f.fields[id]
	if !ok {
		return Field{}, false
	}
	return fld.Clone(), true
}

// Fields returns copies of all fields in insertion order.
func (f *Form) Fields() []Field {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Field, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.fields[id].Clone())
	}
	return out
}

// FieldIDs returns the field ids in insertion order.
func (f *Form) FieldIDs() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.order...)
}

// Len returns the number of fields.
func (f *Form) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.fields)
}

// GetValue returns field id → value. Group fields yield one element per
// group: a map of sub-field id → value for a row, or a nested slice for a
// group set appended through AddField.
func (f *Form) GetValue() map[string]any {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string]any, len(f.fields))
	for id, fld := range f.fields {
		if fld.IsGroup() {
			out[id] = groupValues(fld.Groups)
			continue
		}
		out[id] = fld.Value
	}
	return out
}

// AddField adds the field described by spec, replacing any field with the
// same id. A group spec whose id already names a group field is appended to
// it as a single nested entry rather than flattened into its rows.
func (f *Form) AddField(spec FieldSpec) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if spec.Groups != nil {
		if existing, ok := f.fields[spec.ID]; ok && existing.IsGroup() {
			existing.Groups = append(existing.Groups, Group{Nested: stampGroups(spec.Groups, f.id)})
			f.fields[spec.ID] = existing
			return
		}
	}
	f.putLocked(spec.stamp(f.id))
}

// AddFields applies AddField to each spec in order.
func (f *Form) AddFields(specs ...FieldSpec) {
	for _, spec := range specs {
		f.AddField(spec)
	}
}

// AppendGroup appends row as a new group of the group field name, creating
// the group field first if it is missing or is a plain field.
func (f *Form) AppendGroup(name string, row []FieldSpec) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fld, ok := f.fields[name]
	if !ok || !fld.IsGroup() {
		fld = Field{ID: name, Form: f.id, Groups: []Group{}}
	}
	fld.Groups = append(fld.Groups, stampRow(row, f.id))
	f.putLocked(fld)
}

// RemoveField deletes the field with the given id. It reports whether a
// field was removed; a missing id is not an error. The store entry is left
// untouched until the next UpdateFormValidity.
func (f *Form) RemoveField(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.removeLocked(id)
}

// RemoveFields applies RemoveField to each id in order.
func (f *Form) RemoveFields(ids ...string) {
	for _, id := range ids {
		f.RemoveField(id)
	}
}

// RemoveGroup removes the group at index from the group field name.
//
// Index 0 removes the whole group field, not its first group. A missing
// group field or an out-of-range index leaves the form unchanged and is
// logged and returned as ErrGroupNotFound or ErrGroupIndex.
func (f *Form) RemoveGroup(name string, index int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if index == 0 {
		f.removeLocked(name)
		return nil
	}

	fld, ok := f.fields[name]
	if !ok || !fld.IsGroup() {
		err := fmt.Errorf("%w: %q", ErrGroupNotFound, name)
		f.logger.Error("cannot remove group", fieldAttr(name), slog.Int("index", index), errAttr(err))
		return err
	}
	if index < 0 || index >= len(fld.Groups) {
		err := fmt.Errorf("%w: %q has %d groups, index %d", ErrGroupIndex, name, len(fld.Groups), index)
		f.logger.Error("cannot remove group", fieldAttr(name), slog.Int("index", index), errAttr(err))
		return err
	}

	groups := make([]Group, 0, len(fld.Groups)-1)
	groups = append(groups, fld.Groups[:index]...)
	fld.Groups = append(groups, fld.Groups[index+1:]...)
	f.fields[name] = fld
	return nil
}

// SetValue changes the value of a plain field without validating it. Call
// Coordinator.UpdateFormValidity afterwards to refresh the store.
func (f *Form) SetValue(id string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fld, ok := f.fields[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrFieldNotFound, id)
	}
	fld.Value = value
	f.fields[id] = fld
	return nil
}

// PutField replaces an existing field with fld. The field keeps its
// position and form id.
func (f *Form) PutField(fld Field) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.fields[fld.ID]; !ok {
		return fmt.Errorf("%w: %q", ErrFieldNotFound, fld.ID)
	}
	fld = fld.Clone()
	fld.Form = f.id
	f.fields[fld.ID] = fld
	return nil
}

// origin returns the source that defined the given dotted path, if known.
func (f *Form) origin(path string) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.origins[path]
}

func (f *Form) applyValidity(validity map[string]FieldValidity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, v := range validity {
		fld, ok := f.fields[id]
		if !ok {
			continue
		}
		fld.IsValid, fld.IsDirty, fld.ShowError = v.IsValid, v.IsDirty, v.ShowError
		f.fields[id] = fld
	}
}

func (f *Form) putLocked(fld Field) {
	if _, ok := f.fields[fld.ID]; !ok {
		f.order = append(f.order, fld.ID)
	}
	f.fields[fld.ID] = fld
}

func (f *Form) removeLocked(id string) bool {
	if _, ok := f.fields[id]; !ok {
		return false
	}
	delete(f.fields, id)
	for i, v := range f.order {
		if v == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return true
}
