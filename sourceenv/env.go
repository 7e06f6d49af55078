package sourceenv

import (
	"context"
	"os"
	"strings"

	"github.com/Azhovan/formstate"
	"github.com/Azhovan/formstate/internal/normalize"
)

// Options configures environment variable source behavior.
type Options struct {
	// Prefix filters vars starting with prefix (stripped before normalization).
	// Empty = load all vars.
	Prefix string

	// CaseSensitive controls prefix matching (default: false).
	// Keys are always lowercased after prefix stripping.
	CaseSensitive bool
}

type envSource struct {
	opts Options
}

// New creates an environment variable source.
func New(opts Options) formstate.Source {
	return &envSource{opts: opts}
}

// Load scans environment variables, filters by prefix, and normalizes keys.
// Values are always strings; the loader converts rule parameters.
func (e *envSource) Load(ctx context.Context) (map[string]any, error) {
	result := make(map[string]any)

	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}

		if e.opts.Prefix != "" {
			if !e.hasPrefix(key) {
				continue
			}
			key = key[len(e.opts.Prefix):]
		}

		if key == "" {
			continue
		}

		result[normalize.ToLowerDotPath(key)] = value
	}

	return result, nil
}

func (e *envSource) hasPrefix(key string) bool {
	if e.opts.CaseSensitive {
		return strings.HasPrefix(key, e.opts.Prefix)
	}
	return strings.HasPrefix(strings.ToUpper(key), strings.ToUpper(e.opts.Prefix))
}

// Watch returns ErrWatchNotSupported; the environment is read once.
func (e *envSource) Watch(ctx context.Context) (<-chan formstate.ChangeEvent, error) {
	return nil, formstate.ErrWatchNotSupported
}

// Name returns "env", or "env:" followed by the prefix when one is set.
func (e *envSource) Name() string {
	if e.opts.Prefix == "" {
		return "env"
	}
	return "env:" + e.opts.Prefix
}
