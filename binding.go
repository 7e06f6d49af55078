package formstate

import (
	"fmt"
	"log/slog"
	"sync"
)

// Binder connects value sources to the rule engine and the coordinator.
type Binder struct {
	coord  *Coordinator
	logger *slog.Logger
}

// NewBinder creates a Binder that registers results with coord and logs
// through coord's logger.
func NewBinder(coord *Coordinator) *Binder {
	return &Binder{coord: coord, logger: coord.Logger()}
}

// BindOption configures a Binding.
type BindOption func(*Binding)

// OnChange registers fn to receive the field after every re-validation.
func OnChange(fn func(Field)) BindOption {
	return func(b *Binding) {
		if fn != nil {
			b.onChange = append(b.onChange, fn)
		}
	}
}

// Binding is a live link between a value source and a field.
type Binding struct {
	mu       sync.Mutex
	binder   *Binder
	field    Field
	detach   func()
	closed   bool
	onChange []func(Field)
}

// Validation validates field once with its current value (IsDirty and
// ShowError false), registers the result, and then re-validates on every
// value src reports: IsDirty becomes true and ShowError mirrors !IsValid.
//
// Call Destroy when the owning element goes away; no store writes happen
// from this binding afterwards.
func (b *Binder) Validation(src ValueSource, field Field, opts ...BindOption) (*Binding, error) {
	binding := &Binding{binder: b, field: field.Clone()}
	for _, opt := range opts {
		opt(binding)
	}

	f := binding.field
	f.IsValid = b.coord.validate(f)
	f.IsDirty = false
	f.ShowError = false
	if err := b.coord.RegisterField(f.Form, f.ID, f.Validity()); err != nil {
		b.logger.Error("cannot bind field", formAttr(f.Form), fieldAttr(f.ID), errAttr(err))
		return nil, err
	}
	binding.field = f
	binding.notify(f)

	detach := src.Attach(binding.handle)
	binding.mu.Lock()
	binding.detach = detach
	binding.mu.Unlock()
	return binding, nil
}

// BindField binds the field id of form to src and writes every update back
// into the form, so GetValue and UpdateFormValidity see the latest value.
func (b *Binder) BindField(src ValueSource, form *Form, id string, opts ...BindOption) (*Binding, error) {
	if form == nil {
		return nil, ErrNilForm
	}
	field, ok := form.Field(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFieldNotFound, id)
	}
	writeBack := OnChange(func(f Field) {
		if err := form.PutField(f); err != nil {
			b.logger.Warn("bound field no longer in form", formAttr(form.ID()), fieldAttr(f.ID), errAttr(err))
		}
	})
	return b.Validation(src, field, append([]BindOption{writeBack}, opts...)...)
}

// ComponentValidation re-validates field against its current value and
// registers the result. The caller supplies IsDirty; ShowError becomes
// IsDirty && !IsValid. It returns the updated field and does not subscribe
// to anything, so call it on every relevant change.
func (b *Binder) ComponentValidation(field Field) (Field, error) {
	f := field.Clone()
	f.IsValid = b.coord.validate(f)
	f.ShowError = f.IsDirty && !f.IsValid
	if err := b.coord.RegisterField(f.Form, f.ID, f.Validity()); err != nil {
		b.logger.Error("cannot register field", formAttr(f.Form), fieldAttr(f.ID), errAttr(err))
		return f, err
	}
	return f, nil
}

// Field returns the latest state of the bound field.
func (bd *Binding) Field() Field {
	bd.mu.Lock()
	defer bd.mu.Unlock()
	return bd.field.Clone()
}

// Destroy detaches the change handler. Calls after the first are no-ops.
// A handler already running when Destroy is called may still complete.
func (bd *Binding) Destroy() {
	bd.mu.Lock()
	if bd.closed {
		bd.mu.Unlock()
		return
	}
	bd.closed = true
	detach := bd.detach
	bd.mu.Unlock()

	if detach != nil {
		detach()
	}
}

func (bd *Binding) handle(value any) {
	bd.mu.Lock()
	if bd.closed {
		bd.mu.Unlock()
		return
	}
	f := bd.field
	f.Value = value
	bd.mu.Unlock()

	coord := bd.binder.coord
	f.IsValid = coord.validate(f)
	f.IsDirty = true
	f.ShowError = !f.IsValid

	bd.mu.Lock()
	if bd.closed {
		bd.mu.Unlock()
		return
	}
	bd.field = f
	bd.mu.Unlock()

	if err := coord.RegisterField(f.Form, f.ID, f.Validity()); err != nil {
		bd.binder.logger.Error("cannot register field", formAttr(f.Form), fieldAttr(f.ID), errAttr(err))
		return
	}
	bd.notify(f)
}

func (bd *Binding) notify(f Field) {
	for _, fn := range bd.onChange {
		fn(f.Clone())
	}
}
