package formstate

import (
	"context"
	"errors"
	"time"
)

// Source provides form field specs from backends (files, env vars).
// Keys are dot-separated paths rooted at a field id (e.g., "username.value").
type Source interface {
	// Load returns the spec as a flat map. Missing optional sources should return empty map.
	Load(ctx context.Context) (map[string]any, error)

	// Watch emits ChangeEvent when the spec changes. Returns ErrWatchNotSupported if not supported.
	Watch(ctx context.Context) (<-chan ChangeEvent, error)

	// Name identifies the source in provenance and errors (e.g., "file:form.yaml").
	Name() string
}

// ChangeEvent notifies of spec changes.
type ChangeEvent struct {
	At    time.Time
	Cause string // Description (e.g., "file-changed")
}

// ErrWatchNotSupported is returned when watching is not supported.
var ErrWatchNotSupported = errors.New("formstate: watch not supported by this source")

// ValueSource is anything a field can be bound to: an input element, a
// channel, a terminal prompt. Attach registers callback to receive the current
// value on every change and returns a func that detaches it.
type ValueSource interface {
	Attach(callback func(value any)) (detach func())
}

// SpecSnapshot represents a spec version emitted by Loader.Watch().
type SpecSnapshot struct {
	Spec     *Spec
	Version  int64 // Increments on reload (starts at 1)
	LoadedAt time.Time
	Source   string // What triggered the load
}
