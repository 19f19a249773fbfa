package storage

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// ErrNoArray is returned by array operations outside of an array scope.
var ErrNoArray = errors.New("storage: no array in progress")

// Kinds accepted by Open.
const (
	KindMemory = "memory"
	KindTOML   = "toml"
	KindJSON   = "json"
	KindSQLite = "sqlite"
)

// sizeField holds the element count of an array.
const sizeField = "size"

// arrayScope is one level of BeginReadArray/BeginWriteArray nesting.
type arrayScope struct {
	prefix  string
	write   bool
	size    int
	index   int            // -1 until SetArrayIndex
	pending map[string]any // write scopes only, full keys
}

// Engine implements scoped array access over a Backend.
//
// Array elements are stored as <key>/<n>/<field> with n starting at 1, and
// the element count under <key>/size. A write array is buffered and committed
// by EndArray in a single Backend.Replace of <key>.
type Engine struct {
	mu      sync.Mutex
	backend Backend
	scopes  []*arrayScope
}

// NewEngine wraps backend.
func NewEngine(backend Backend) *Engine {
	return &Engine{backend: backend}
}

// Open opens an engine of the given kind at path. An empty kind is inferred
// from the file extension.
func Open(kind, path string) (*Engine, error) {
	if kind == "" {
		kind = KindFromPath(path)
	}
	switch kind {
	case KindMemory:
		return NewMemory(), nil
	case KindTOML, KindJSON:
		b, err := OpenFileBackend(path, kind)
		if err != nil {
			return nil, err
		}
		return NewEngine(b), nil
	case KindSQLite:
		b, err := OpenSQLiteBackend(path)
		if err != nil {
			return nil, err
		}
		return NewEngine(b), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q: must be memory, toml, json or sqlite", kind)
}

// KindFromPath infers a backend kind from the file extension of path.
// Unknown extensions default to toml.
func KindFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return KindJSON
	case ".db", ".sqlite", ".sqlite3":
		return KindSQLite
	}
	return KindTOML
}

// Backend returns the wrapped backend.
func (e *Engine) Backend() Backend {
	return e.backend
}

func (e *Engine) top() *arrayScope {
	if len(e.scopes) == 0 {
		return nil
	}
	return e.scopes[len(e.scopes)-1]
}

// resolve turns a key relative to the current array element into a full key.
func (e *Engine) resolve(key string) string {
	key = strings.Trim(key, "/")
	s := e.top()
	if s == nil {
		return key
	}
	base := s.prefix
	if s.index >= 0 {
		base += "/" + strconv.Itoa(s.index+1)
	}
	if key == "" {
		return base
	}
	return base + "/" + key
}

// writeScope returns the innermost write scope, if any.
func (e *Engine) writeScope() *arrayScope {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if e.scopes[i].write {
			return e.scopes[i]
		}
	}
	return nil
}

func (e *Engine) Read(key string) (any, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	full := e.resolve(key)
	if ws := e.writeScope(); ws != nil && inSubtree(full, ws.prefix) {
		v, ok := ws.pending[full]
		return v, ok, nil
	}
	return e.backend.Get(full)
}

func (e *Engine) Write(key string, v any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	full := e.resolve(key)
	if ws := e.writeScope(); ws != nil && inSubtree(full, ws.prefix) {
		val, err := normalize(v)
		if err != nil {
			return err
		}
		ws.pending[full] = val
		return nil
	}
	return e.backend.Set(full, v)
}

func (e *Engine) Remove(key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	full := e.resolve(key)
	if ws := e.writeScope(); ws != nil && inSubtree(full, ws.prefix) {
		for k := range ws.pending {
			if inSubtree(k, full) {
				delete(ws.pending, k)
			}
		}
		return nil
	}
	return e.backend.Replace(full, nil)
}

func (e *Engine) BeginReadArray(key string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	prefix := e.resolve(key)
	raw, ok, err := e.backend.Get(prefix + "/" + sizeField)
	if err != nil {
		return 0, err
	}
	size := 0
	if ok {
		size, err = toSize(raw)
		if err != nil {
			return 0, fmt.Errorf("array %q: %w", prefix, err)
		}
	}
	e.scopes = append(e.scopes, &arrayScope{prefix: prefix, size: size, index: -1})
	return size, nil
}

func (e *Engine) BeginWriteArray(key string, size int) error {
	if size < 0 {
		return fmt.Errorf("array %q: negative size %d", key, size)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	prefix := e.resolve(key)
	e.scopes = append(e.scopes, &arrayScope{
		prefix:  prefix,
		write:   true,
		size:    size,
		index:   -1,
		pending: map[string]any{prefix + "/" + sizeField: size},
	})
	return nil
}

func (e *Engine) SetArrayIndex(i int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.top()
	if s == nil {
		return ErrNoArray
	}
	if i < 0 || i >= s.size {
		return fmt.Errorf("array %q: index %d out of range [0,%d)", s.prefix, i, s.size)
	}
	s.index = i
	return nil
}

// EndArray closes the innermost array. A write array is committed to its
// enclosing write array, or to the backend when it is the outermost one.
func (e *Engine) EndArray() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.top()
	if s == nil {
		return ErrNoArray
	}
	e.scopes = e.scopes[:len(e.scopes)-1]
	if !s.write {
		return nil
	}

	if parent := e.writeScope(); parent != nil && inSubtree(s.prefix, parent.prefix) {
		for k := range parent.pending {
			if inSubtree(k, s.prefix) {
				delete(parent.pending, k)
			}
		}
		for k, v := range s.pending {
			parent.pending[k] = v
		}
		return nil
	}
	return e.backend.Replace(s.prefix, s.pending)
}

// DiscardArray closes the innermost array without committing it.
func (e *Engine) DiscardArray() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.scopes) > 0 {
		e.scopes = e.scopes[:len(e.scopes)-1]
	}
}

func (e *Engine) Keys() ([]string, error) {
	return e.backend.Keys()
}

func (e *Engine) Sync() error {
	return e.backend.Sync()
}

// Close closes the backend.
func (e *Engine) Close() error {
	return e.backend.Close()
}

func toSize(raw any) (int, error) {
	switch x := raw.(type) {
	case int:
		return max(x, 0), nil
	case int64:
		return max(int(x), 0), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("invalid size %v", x)
		}
		return max(int(x), 0), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, fmt.Errorf("invalid size %q: %w", x, err)
		}
		return max(n, 0), nil
	}
	return 0, fmt.Errorf("invalid size type %T", raw)
}
