package storage

import (
	"fmt"
	"strings"
)

// Backend is a flat key/value map. Keys are "/"-delimited paths without
// leading or trailing separators.
type Backend interface {
	// Get returns the value under key.
	Get(key string) (any, bool, error)

	// Set stores v under key.
	Set(key string, v any) error

	// Replace removes key and every key below it, then stores entries.
	// Readers observe either the old or the new subtree, never a mix.
	Replace(prefix string, entries map[string]any) error

	// Keys returns all keys in sorted order.
	Keys() ([]string, error)

	// Sync flushes pending writes.
	Sync() error

	// Close releases resources.
	Close() error
}

// inSubtree reports whether key is prefix or lies below it.
func inSubtree(key, prefix string) bool {
	return key == prefix || strings.HasPrefix(key, prefix+"/")
}

// normalize maps supported scalars onto bool, int, float64 and string.
func normalize(v any) (any, error) {
	switch x := v.(type) {
	case bool, string, int, float64:
		return x, nil
	case int32:
		return int(x), nil
	case int64:
		return int(x), nil
	case uint32:
		return int(x), nil
	case float32:
		return float64(x), nil
	}
	return nil, fmt.Errorf("unsupported value type %T", v)
}
