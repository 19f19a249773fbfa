package hooks

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/raphi011/settle/internal/log"
)

// ErrUnknownType is returned when no factory is registered for a hook type.
var ErrUnknownType = errors.New("unknown release hook type")

// Factory creates a hook for the source at sourcePath.
type Factory func(sourcePath string) (Hook, error)

// Registry maps hook type names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Types returns the registered type names, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Create returns a new hook of the given type.
func (r *Registry) Create(name, sourcePath string) (Hook, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownType, name)
	}
	h, err := f(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("create %q hook: %w", name, err)
	}
	return h, nil
}

// CreateHooks creates a hook for each name. Hooks that cannot be created
// are skipped with a warning; the failure and the types of its wrapped
// errors are logged at debug level.
func (r *Registry) CreateHooks(ctx context.Context, names []string, sourcePath string) []Hook {
	l := log.FromContext(ctx)

	var created []Hook
	for _, name := range names {
		h, err := r.Create(name, sourcePath)
		if err != nil {
			l.Warn(fmt.Sprintf("release hook %q is not available", name))
			l.Debug("creating release hook failed", "hook", name, "source", sourcePath, "err", err, "chain", errorChain(err))
			continue
		}
		created = append(created, h)
	}
	return created
}

// errorChain lists the dynamic types of err and of every error it wraps,
// outermost first.
func errorChain(err error) string {
	var types []string
	for ; err != nil; err = errors.Unwrap(err) {
		types = append(types, fmt.Sprintf("%T", err))
	}
	return strings.Join(types, ",")
}
