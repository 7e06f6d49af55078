package formstate

import (
	"fmt"
	"log/slog"
)

// Coordinator keeps per-field and per-form validity in the store consistent.
// Every write is a single store transform, so form-level IsValid is always
// the AND of the registered fields right after the write.
type Coordinator struct {
	store  *Store
	logger *slog.Logger
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithLogger sets the logger used for rule and group diagnostics.
// A nil logger is ignored.
func WithLogger(logger *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCoordinator creates a Coordinator writing to store. A nil store gets a
// fresh one.
func NewCoordinator(store *Store, opts ...CoordinatorOption) *Coordinator {
	if store == nil {
		store = NewStore()
	}
	c := &Coordinator{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the underlying store.
func (c *Coordinator) Store() *Store {
	return c.store
}

// Logger returns the coordinator's logger.
func (c *Coordinator) Logger() *slog.Logger {
	return c.logger
}

// Snapshot returns a copy of the current store state.
func (c *Coordinator) Snapshot() State {
	return c.store.Get()
}

// Subscribe forwards to the store.
func (c *Coordinator) Subscribe(listener Listener) (unsubscribe func()) {
	return c.store.Subscribe(listener)
}

// FormValidity returns the aggregated validity of formID.
func (c *Coordinator) FormValidity(formID string) (FormValidity, bool) {
	fv, ok := c.store.Get()[formID]
	return fv, ok
}

// RegisterForm creates or resets the store entry for formID: no fields,
// not valid, not dirty.
func (c *Coordinator) RegisterForm(formID string) {
	c.store.Update(func(s State) State {
		s[formID] = FormValidity{Fields: map[string]FieldValidity{}}
		return s
	})
}

// RegisterField writes the validity of one field and recomputes the form
// aggregate in the same transform. The form must have been registered.
func (c *Coordinator) RegisterField(formID, fieldID string, v FieldValidity) error {
	var err error
	c.store.Update(func(s State) State {
		fv, ok := s[formID]
		if !ok {
			err = fmt.Errorf("%w: %q", ErrFormNotRegistered, formID)
			return s
		}
		if fv.Fields == nil {
			fv.Fields = map[string]FieldValidity{}
		}
		fv.Fields[fieldID] = v
		fv.IsValid, fv.IsDirty = aggregate(fv.Fields)
		s[formID] = fv
		return s
	})
	return err
}

// UpdateFormValidity re-validates every plain field of form against its
// current value and rewrites the form's store entry in one transform. Dirty
// flags are kept, ShowError becomes IsDirty && !IsValid, and entries for
// fields no longer in the form are dropped. The new flags are written back
// into the form. Use it after values were changed programmatically.
func (c *Coordinator) UpdateFormValidity(form *Form) error {
	if form == nil {
		return ErrNilForm
	}

	fields := form.Fields()
	results := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.IsGroup() {
			continue
		}
		results[f.ID] = c.validate(f)
	}

	var updated map[string]FieldValidity
	c.store.Update(func(s State) State {
		prev := s[form.ID()].Fields
		next := make(map[string]FieldValidity, len(results))
		for id, valid := range results {
			v := prev[id]
			v.IsValid = valid
			v.ShowError = v.IsDirty && !valid
			next[id] = v
		}
		fv := FormValidity{Fields: next}
		fv.IsValid, fv.IsDirty = aggregate(next)
		s[form.ID()] = fv
		updated = next
		return s
	})

	form.applyValidity(updated)
	return nil
}

// validate runs the rule engine on f and logs unknown rules.
func (c *Coordinator) validate(f Field) bool {
	valid, err := ValidateField(f.Value, f.Validation)
	if err != nil {
		c.logger.Error("unknown validation rule, treating as valid",
			formAttr(f.Form), fieldAttr(f.ID), errAttr(err))
	}
	return valid
}

// aggregate returns AND of IsValid and OR of IsDirty over fields.
func aggregate(fields map[string]FieldValidity) (valid, dirty bool) {
	valid = true
	for _, f := range fields {
		if !f.IsValid {
			valid = false
		}
		if f.IsDirty {
			dirty = true
		}
	}
	return valid, dirty
}

func formAttr(id string) slog.Attr  { return slog.String("form", id) }
func fieldAttr(id string) slog.Attr { return slog.String("field", id) }

func errAttr(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}
