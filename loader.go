package formstate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Azhovan/formstate/internal/normalize"
)

// defaultDebounce is how long Watch waits after the last change event
// before reloading.
const defaultDebounce = 100 * time.Millisecond

// Spec is the decoded description of a form: what NewFormFromSpec builds.
type Spec struct {
	FormID     string
	Fields     []FieldSpec // Sorted by field id
	Provenance []FieldProvenance
}

// Loader builds a form Spec from multiple sources.
// Sources are processed in order (later override earlier). Field ids and
// attribute names from different sources match case-insensitively, so an
// env var USERNAME__VALUE overrides the value of a file's "userName" field.
type Loader struct {
	formID   string
	sources  []Source
	strict   bool // Fail on unknown attributes (default: true)
	debounce time.Duration
	logger   *slog.Logger
}

// NewLoader creates a Loader for formID with no sources and strict mode enabled.
func NewLoader(formID string) *Loader {
	return &Loader{
		formID:   formID,
		sources:  make([]Source, 0),
		strict:   true,
		debounce: defaultDebounce,
		logger:   slog.Default(),
	}
}

// WithSource adds a source. Sources are processed in order (later override earlier).
func (l *Loader) WithSource(src Source) *Loader {
	l.sources = append(l.sources, src)
	return l
}

// WithLogger sets the logger for ignored attributes and watch diagnostics.
func (l *Loader) WithLogger(logger *slog.Logger) *Loader {
	if logger != nil {
		l.logger = logger
	}
	return l
}

// Strict controls whether unknown attributes cause errors. Default: true.
func (l *Loader) Strict(strict bool) *Loader {
	l.strict = strict
	return l
}

// Debounce sets how long Watch waits for further change events before
// reloading. Default: 100ms.
func (l *Loader) Debounce(d time.Duration) *Loader {
	if d > 0 {
		l.debounce = d
	}
	return l
}

// mergedEntry is one attribute value after merging all sources.
type mergedEntry struct {
	value      any
	attr       string // Attribute path as the source wrote it (e.g., "validation.minLength")
	sourceName string
}

type fieldEntry struct {
	id    string
	attrs map[string]mergedEntry // Keyed by lowercase attribute path
}

// Load loads, merges and decodes the spec from all sources.
// Returns the Spec or a *ValidationError listing every bad attribute.
func (l *Loader) Load(ctx context.Context) (*Spec, error) {
	// Step 1: Load from all sources and merge
	fields := make(map[string]*fieldEntry)

	for _, source := range l.sources {
		data, err := source.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load source %s: %w", source.Name(), err)
		}

		for key, value := range data {
			id, attr := normalize.SplitHead(key)
			if id == "" {
				continue
			}
			if attr == "" {
				// "username: bob" is shorthand for "username.value: bob"
				attr = "value"
			}

			entry, ok := fields[strings.ToLower(id)]
			if !ok {
				entry = &fieldEntry{id: id, attrs: make(map[string]mergedEntry)}
				fields[strings.ToLower(id)] = entry
			}
			entry.attrs[strings.ToLower(attr)] = mergedEntry{
				value:      value,
				attr:       attr,
				sourceName: source.Name(),
			}
		}
	}

	// Step 2: Decode every field in id order
	entries := make([]*fieldEntry, 0, len(fields))
	for _, e := range fields {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })

	spec := &Spec{FormID: l.formID, Fields: make([]FieldSpec, 0, len(entries))}
	var allErrors []FieldError
	for _, e := range entries {
		fs, prov, errs := l.decodeField(e.id, e.id, e.attrs)
		spec.Fields = append(spec.Fields, fs)
		spec.Provenance = append(spec.Provenance, prov...)
		allErrors = append(allErrors, errs...)
	}

	// Step 3: Return error if any attribute was rejected
	if len(allErrors) > 0 {
		return nil, &ValidationError{FieldErrors: allErrors}
	}

	sortProvenance(spec.Provenance)
	return spec, nil
}

// decodeField turns merged attributes into a FieldSpec. path prefixes
// provenance and error paths.
func (l *Loader) decodeField(path, id string, attrs map[string]mergedEntry) (FieldSpec, []FieldProvenance, []FieldError) {
	spec := FieldSpec{ID: id}
	var prov []FieldProvenance
	var errs []FieldError

	invalid := func(fieldPath, msg string) {
		errs = append(errs, FieldError{FieldPath: fieldPath, Code: ErrCodeInvalidType, Message: msg})
	}

	// The whole-set directive goes first so per-rule keys override it
	if e, ok := attrs["validation"]; ok {
		fieldPath := normalize.ApplyPrefix(path, "validation")
		if tag, isString := e.value.(string); !isString {
			invalid(fieldPath, fmt.Sprintf("expected rule directive string, got %T", e.value))
		} else if rules, err := ParseRules(tag); err != nil {
			invalid(fieldPath, err.Error())
		} else {
			spec.Validation = rules
			prov = append(prov, FieldProvenance{FieldPath: fieldPath, SourceName: e.sourceName})
		}
	}

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		e := attrs[key]
		fieldPath := normalize.ApplyPrefix(path, e.attr)

		switch {
		case key == "validation":
			continue
		case key == "value":
			spec.Value = e.value
		case key == "validationmessage":
			msg, ok := e.value.(string)
			if !ok {
				invalid(fieldPath, fmt.Sprintf("expected string, got %T", e.value))
				continue
			}
			spec.ValidationMessage = msg
		case key == "groups":
			rows, groupErrs := l.decodeGroups(fieldPath, e.value, e.sourceName)
			errs = append(errs, groupErrs...)
			spec.Groups = rows
		case strings.HasPrefix(key, "validation."):
			rule := canonicalRule(e.attr[len("validation."):])
			fieldPath = normalize.ApplyPrefix(path, "validation."+rule)
			param, keep, err := ruleParam(e.value)
			if err != nil {
				invalid(fieldPath, err.Error())
				continue
			}
			if spec.Validation == nil {
				spec.Validation = RuleSet{}
			}
			if keep {
				spec.Validation[rule] = param
			} else {
				delete(spec.Validation, rule)
			}
		default:
			if l.strict {
				errs = append(errs, FieldError{
					FieldPath: fieldPath,
					Code:      ErrCodeUnknownKey,
					Message:   "unknown field attribute (strict mode)",
				})
			} else {
				l.logger.Debug("ignoring unknown field attribute", slog.String("path", fieldPath), slog.String("source", e.sourceName))
			}
			continue
		}

		prov = append(prov, FieldProvenance{FieldPath: fieldPath, SourceName: e.sourceName})
	}

	return spec, prov, errs
}

// decodeGroups decodes a sequence of rows, each a sequence of single-key
// mappings {subFieldID: attrs}.
func (l *Loader) decodeGroups(path string, value any, sourceName string) ([][]FieldSpec, []FieldError) {
	var errs []FieldError
	invalid := func(fieldPath, msg string) {
		errs = append(errs, FieldError{FieldPath: fieldPath, Code: ErrCodeInvalidType, Message: msg})
	}

	rows, ok := value.([]any)
	if !ok {
		invalid(path, fmt.Sprintf("expected sequence of groups, got %T", value))
		return nil, errs
	}

	out := make([][]FieldSpec, 0, len(rows))
	for i, r := range rows {
		rowPath := fmt.Sprintf("%s[%d]", path, i)
		items, ok := r.([]any)
		if !ok {
			invalid(rowPath, fmt.Sprintf("expected sequence of fields, got %T", r))
			continue
		}

		row := make([]FieldSpec, 0, len(items))
		for j, item := range items {
			itemPath := fmt.Sprintf("%s[%d]", rowPath, j)
			m := toStringMap(item)
			if len(m) != 1 {
				invalid(itemPath, "expected a single-key mapping {fieldId: attributes}")
				continue
			}
			for id, raw := range m {
				flat := make(map[string]any)
				if toStringMap(raw) != nil {
					normalize.Flatten("", raw, flat)
				} else {
					flat["value"] = raw
				}
				attrs := make(map[string]mergedEntry, len(flat))
				for k, v := range flat {
					attrs[strings.ToLower(k)] = mergedEntry{value: v, attr: k, sourceName: sourceName}
				}
				spec, _, fieldErrs := l.decodeField(normalize.ApplyPrefix(itemPath, id), id, attrs)
				errs = append(errs, fieldErrs...)
				row = append(row, spec)
			}
		}
		out = append(out, row)
	}
	return out, errs
}

// canonicalRule maps a case-insensitive spelling of a known rule to its
// canonical name. Unknown names are returned unchanged.
func canonicalRule(name string) string {
	for _, known := range []string{RuleEmail, RuleMinLength, RuleMaxLength, RuleLength} {
		if strings.EqualFold(name, known) {
			return known
		}
	}
	return name
}

// ruleParam converts a decoded rule parameter. Booleans switch a rule on or
// off (email: true); everything else must be an integer.
func ruleParam(v any) (param int, keep bool, err error) {
	switch x := v.(type) {
	case nil:
		return 0, true, nil
	case bool:
		return 0, x, nil
	case int:
		return x, true, nil
	case int64:
		return int(x), true, nil
	case uint64:
		return int(x), true, nil
	case float64:
		if x != math.Trunc(x) {
			return 0, false, fmt.Errorf("expected integer parameter, got %v", x)
		}
		return int(x), true, nil
	case string:
		s := strings.TrimSpace(x)
		if n, convErr := strconv.Atoi(s); convErr == nil {
			return n, true, nil
		}
		if b, convErr := strconv.ParseBool(s); convErr == nil {
			return 0, b, nil
		}
		return 0, false, fmt.Errorf("expected integer parameter, got %q", x)
	default:
		return 0, false, fmt.Errorf("expected integer parameter, got %T", v)
	}
}

func toStringMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			if ks, ok := k.(string); ok {
				out[ks] = val
			}
		}
		return out
	}
	return nil
}

// Watch monitors sources for changes and reloads the spec.
// Returns: snapshots channel, errors channel, initial load error.
// Change events are debounced; a failed reload is reported on the errors
// channel and the previous spec stays current. Both channels close when ctx
// is done or every watched source has closed its change channel.
func (l *Loader) Watch(ctx context.Context) (<-chan SpecSnapshot, <-chan error, error) {
	initial, err := l.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("initial load failed: %w", err)
	}

	snapshotCh := make(chan SpecSnapshot)
	errorCh := make(chan error)

	go l.watchLoop(ctx, initial, snapshotCh, errorCh)

	return snapshotCh, errorCh, nil
}

// watchLoop emits the initial snapshot, then reloads after each debounced
// burst of change events.
func (l *Loader) watchLoop(ctx context.Context, initial *Spec, snapshotCh chan<- SpecSnapshot, errorCh chan<- error) {
	defer close(snapshotCh)
	defer close(errorCh)

	version := int64(1)
	select {
	case snapshotCh <- SpecSnapshot{Spec: initial, Version: version, LoadedAt: time.Now(), Source: "initial"}:
	case <-ctx.Done():
		return
	}

	merged := make(chan ChangeEvent)
	var wg sync.WaitGroup

	for _, source := range l.sources {
		changeCh, err := source.Watch(ctx)
		if err != nil {
			if errors.Is(err, ErrWatchNotSupported) {
				continue
			}
			select {
			case errorCh <- fmt.Errorf("watch source %s: %w", source.Name(), err):
			case <-ctx.Done():
				return
			}
			continue
		}

		wg.Add(1)
		go func(ch <-chan ChangeEvent) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case event, ok := <-ch:
					if !ok {
						return
					}
					select {
					case merged <- event:
					case <-ctx.Done():
						return
					}
				}
			}
		}(changeCh)
	}

	go func() {
		wg.Wait()
		close(merged)
	}()

	var timer *time.Timer
	var timerC <-chan time.Time
	cause := ""
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	changes := (<-chan ChangeEvent)(merged)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-changes:
			if !ok {
				changes = nil
				if timerC == nil {
					return
				}
				continue
			}
			cause = event.Cause
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(l.debounce)
			timerC = timer.C

		case <-timerC:
			timerC = nil
			spec, err := l.Load(ctx)
			if err != nil {
				l.logger.Warn("spec reload failed, keeping previous spec", formAttr(l.formID), errAttr(err))
				select {
				case errorCh <- fmt.Errorf("reload failed: %w", err):
				case <-ctx.Done():
					return
				}
			} else {
				version++
				select {
				case snapshotCh <- SpecSnapshot{Spec: spec, Version: version, LoadedAt: time.Now(), Source: cause}:
				case <-ctx.Done():
					return
				}
			}
			if changes == nil {
				return
			}
		}
	}
}
