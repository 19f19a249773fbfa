package storage

import (
	"slices"
	"sync"
)

// MemoryBackend keeps settings in a map. Nothing is persisted.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]any)}
}

// NewMemory creates an engine over a fresh in-memory backend.
func NewMemory() *Engine {
	return NewEngine(NewMemoryBackend())
}

func (m *MemoryBackend) Get(key string) (any, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryBackend) Set(key string, v any) error {
	val, err := normalize(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = val
	return nil
}

func (m *MemoryBackend) Replace(prefix string, entries map[string]any) error {
	normalized := make(map[string]any, len(entries))
	for k, v := range entries {
		val, err := normalize(v)
		if err != nil {
			return err
		}
		normalized[k] = val
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if inSubtree(k, prefix) {
			delete(m.data, k)
		}
	}
	for k, v := range normalized {
		m.data[k] = v
	}
	return nil
}

func (m *MemoryBackend) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

func (m *MemoryBackend) Sync() error  { return nil }
func (m *MemoryBackend) Close() error { return nil }
