package settings

import (
	"fmt"
	"sync"
)

// Engine is the persistent key/value storage consumed by the store.
//
// Between BeginReadArray/BeginWriteArray and EndArray, keys passed to Read
// and Write are relative to the current array element selected with
// SetArrayIndex. A write array is only committed by EndArray;
// DiscardArray drops it.
type Engine interface {
	Read(key string) (any, bool, error)
	Write(key string, v any) error
	Remove(key string) error
	BeginReadArray(key string) (int, error)
	BeginWriteArray(key string, size int) error
	SetArrayIndex(i int) error
	EndArray() error
	DiscardArray()
	Keys() ([]string, error)
	Sync() error
}

// Store resolves typed settings against a schema of defaults.
type Store struct {
	mu     sync.Mutex
	schema *Schema
	engine Engine
}

// New creates a store over engine using schema for defaults and types.
func New(schema *Schema, engine Engine) *Store {
	return &Store{schema: schema, engine: engine}
}

// Schema returns the schema the store was created with.
func (s *Store) Schema() *Schema {
	return s.schema
}

// Value returns the setting for a schema key. The persisted value is
// returned as is when its type matches the default, otherwise it is
// coerced. Without a persisted value the default is returned.
func (s *Store) Value(key string) (any, error) {
	def, err := s.schema.Default(key)
	if err != nil {
		return nil, err
	}

	raw, ok, err := s.read(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return def, nil
	}

	kind := KindOf(def)
	if KindOf(raw) == kind {
		return raw, nil
	}
	v, err := coerce(raw, kind)
	if err != nil {
		return nil, &TypeConversionError{Key: key, Value: raw, Kind: kind, Err: err}
	}
	return v, nil
}

// Hinted returns a setting that is not part of the schema, coerced to kind.
// It reports false when nothing is persisted under key.
func (s *Store) Hinted(key string, kind Kind) (any, bool, error) {
	if s.schema.Has(key) {
		return nil, false, &AmbiguousKeyError{Key: key, Hint: kind}
	}

	raw, ok, err := s.read(key)
	if err != nil || !ok {
		return nil, false, err
	}
	v, err := coerce(raw, kind)
	if err != nil {
		return nil, false, &TypeConversionError{Key: key, Value: raw, Kind: kind, Err: err}
	}
	return v, true, nil
}

// Get returns a schema setting as T.
func Get[T bool | int | float64 | string](s *Store, key string) (T, error) {
	var zero T
	v, err := s.Value(key)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, &TypeConversionError{Key: key, Value: v, Kind: KindOf(zero)}
	}
	return t, nil
}

// Bool returns a boolean schema setting.
func (s *Store) Bool(key string) (bool, error) { return Get[bool](s, key) }

// Int returns an integer schema setting.
func (s *Store) Int(key string) (int, error) { return Get[int](s, key) }

// Float returns a float schema setting.
func (s *Store) Float(key string) (float64, error) { return Get[float64](s, key) }

// String returns a string schema setting.
func (s *Store) String(key string) (string, error) { return Get[string](s, key) }

// Set persists v under key without coercion.
func (s *Store) Set(key string, v any) error {
	val, ok := normalizeScalar(v)
	if !ok {
		return fmt.Errorf("setting %q: unsupported value type %T", key, v)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Write(CleanKey(key), val)
}

// SetText parses text into the schema type of key and persists it.
func (s *Store) SetText(key, text string) error {
	kind, err := s.schema.KindOf(key)
	if err != nil {
		return err
	}
	v, err := coerce(text, kind)
	if err != nil {
		return &TypeConversionError{Key: key, Value: text, Kind: kind, Err: err}
	}
	return s.Set(key, v)
}

// SetHinted parses text as kind and persists it under a non-schema key.
// Schema keys have a fixed type and reject the hint with an
// *AmbiguousKeyError.
func (s *Store) SetHinted(key, text string, kind Kind) error {
	if s.schema.Has(key) {
		return &AmbiguousKeyError{Key: key, Hint: kind}
	}
	v, err := coerce(text, kind)
	if err != nil {
		return &TypeConversionError{Key: key, Value: text, Kind: kind, Err: err}
	}
	return s.Set(key, v)
}

// Remove deletes the persisted value of key, and any array stored under it.
func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Remove(CleanKey(key))
}

// Keys returns every persisted key.
func (s *Store) Keys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Keys()
}

// Sync flushes the engine.
func (s *Store) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Sync()
}

func (s *Store) read(key string) (any, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok, err := s.engine.Read(CleanKey(key))
	if err != nil {
		return nil, false, fmt.Errorf("read %q: %w", key, err)
	}
	if raw == nil {
		return nil, false, nil
	}
	return raw, ok, nil
}
