package config

import (
	"context"
	"path/filepath"
	"sync"
)

// resolverKey is the context key for ConfigResolver
type resolverKey struct{}

// ConfigResolver provides lazy per-source config resolution with caching.
// It loads and merges .settle.toml files with the global config on demand.
type ConfigResolver struct {
	global *Config

	mu    sync.Mutex
	cache map[string]*Config // sourcePath -> merged config
}

// NewResolver creates a new ConfigResolver backed by the given global config.
func NewResolver(global *Config) *ConfigResolver {
	return &ConfigResolver{
		global: global,
		cache:  make(map[string]*Config),
	}
}

// ConfigForSource returns the effective config for a release source,
// merging any .settle.toml found there with the global config. Results are
// cached per cleaned sourcePath. An empty sourcePath yields the global config.
func (r *ConfigResolver) ConfigForSource(sourcePath string) (*Config, error) {
	if sourcePath == "" {
		return r.global, nil
	}
	sourcePath = filepath.Clean(sourcePath)

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.cache[sourcePath]; ok {
		return cached, nil
	}

	local, err := LoadLocal(sourcePath)
	if err != nil {
		return nil, err
	}

	merged := MergeLocal(r.global, local)
	r.cache[sourcePath] = merged
	return merged, nil
}

// Global returns the global config (without any local overrides).
func (r *ConfigResolver) Global() *Config {
	return r.global
}

// WithResolver returns a new context with the ConfigResolver stored in it.
func WithResolver(ctx context.Context, r *ConfigResolver) context.Context {
	return context.WithValue(ctx, resolverKey{}, r)
}

// ResolverFromContext returns the ConfigResolver from context.
// Falls back to a resolver over FromContext(ctx) if none is stored.
func ResolverFromContext(ctx context.Context) *ConfigResolver {
	if r, ok := ctx.Value(resolverKey{}).(*ConfigResolver); ok {
		return r
	}
	return NewResolver(FromContext(ctx))
}
