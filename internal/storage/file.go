package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// FileBackend stores settings as a nested TOML or JSON document.
//
// Every write reloads the document under an exclusive flock, applies the
// change and replaces the file atomically, so concurrent processes never
// lose each other's keys or observe a half-written file.
type FileBackend struct {
	mu     sync.Mutex
	path   string
	format string
	lock   *FileLock
	data   map[string]any // flat cache of the last loaded document
}

// OpenFileBackend opens the document at path. format is KindTOML or
// KindJSON. A missing file is treated as empty; an unreadable one is an error.
func OpenFileBackend(path, format string) (*FileBackend, error) {
	if format != KindTOML && format != KindJSON {
		return nil, fmt.Errorf("unsupported file format %q", format)
	}
	b := &FileBackend{
		path:   path,
		format: format,
		lock:   NewFileLock(path + ".lock"),
	}
	data, err := b.readDisk()
	if err != nil {
		return nil, err
	}
	b.data = data
	return b, nil
}

// Path returns the document path.
func (b *FileBackend) Path() string {
	return b.path
}

func (b *FileBackend) Get(key string) (any, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.data[key]
	return v, ok, nil
}

func (b *FileBackend) Set(key string, v any) error {
	val, err := normalize(v)
	if err != nil {
		return err
	}
	return b.update(func(data map[string]any) {
		data[key] = val
	})
}

func (b *FileBackend) Replace(prefix string, entries map[string]any) error {
	normalized := make(map[string]any, len(entries))
	for k, v := range entries {
		val, err := normalize(v)
		if err != nil {
			return err
		}
		normalized[k] = val
	}
	return b.update(func(data map[string]any) {
		for k := range data {
			if inSubtree(k, prefix) {
				delete(data, k)
			}
		}
		maps.Copy(data, normalized)
	})
}

func (b *FileBackend) Keys() ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Sorted(maps.Keys(b.data)), nil
}

// Sync reloads the document so changes made by other processes become
// visible. Writes are already on disk when Set or Replace return.
func (b *FileBackend) Sync() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, err := b.readDisk()
	if err != nil {
		return err
	}
	b.data = data
	return nil
}

func (b *FileBackend) Close() error { return nil }

// update applies fn to a fresh copy of the document and writes it back.
func (b *FileBackend) update(fn func(map[string]any)) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.lock.WithLock(func() error {
		data, err := b.readDisk()
		if err != nil {
			return err
		}
		fn(data)

		encoded, err := b.encode(data)
		if err != nil {
			return err
		}
		if err := WriteAtomic(b.path, encoded); err != nil {
			return fmt.Errorf("write %s: %w", b.path, err)
		}
		b.data = data
		return nil
	})
}

func (b *FileBackend) readDisk() (map[string]any, error) {
	content, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]any), nil
		}
		return nil, fmt.Errorf("read %s: %w", b.path, err)
	}

	var doc map[string]any
	switch b.format {
	case KindTOML:
		if err := toml.Unmarshal(content, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", b.path, err)
		}
	case KindJSON:
		if len(bytes.TrimSpace(content)) > 0 {
			dec := json.NewDecoder(bytes.NewReader(content))
			dec.UseNumber()
			if err := dec.Decode(&doc); err != nil {
				return nil, fmt.Errorf("parse %s: %w", b.path, err)
			}
		}
	}

	flat := make(map[string]any)
	if err := flatten("", doc, flat); err != nil {
		return nil, fmt.Errorf("parse %s: %w", b.path, err)
	}
	return flat, nil
}

func (b *FileBackend) encode(flat map[string]any) ([]byte, error) {
	doc, err := unflatten(flat)
	if err != nil {
		return nil, err
	}

	switch b.format {
	case KindJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
			return nil, fmt.Errorf("encode %s: %w", b.path, err)
		}
		return buf.Bytes(), nil
	}
}

// flatten turns a nested document into "/"-joined keys. Null leaves are
// absent values and are skipped.
func flatten(prefix string, doc map[string]any, out map[string]any) error {
	for name, v := range doc {
		key := name
		if prefix != "" {
			key = prefix + "/" + name
		}
		if v == nil {
			continue
		}
		if sub, ok := v.(map[string]any); ok {
			if err := flatten(key, sub, out); err != nil {
				return err
			}
			continue
		}
		val, err := decodeScalar(v)
		if err != nil {
			return fmt.Errorf("key %q: %w", key, err)
		}
		out[key] = val
	}
	return nil
}

// unflatten nests "/"-joined keys into tables.
func unflatten(flat map[string]any) (map[string]any, error) {
	doc := make(map[string]any)
	for _, key := range slices.Sorted(maps.Keys(flat)) {
		segs := strings.Split(key, "/")
		table := doc
		for i, seg := range segs[:len(segs)-1] {
			switch next := table[seg].(type) {
			case nil:
				sub := make(map[string]any)
				table[seg] = sub
				table = sub
			case map[string]any:
				table = next
			default:
				return nil, fmt.Errorf("key %q conflicts with value at %q", key, strings.Join(segs[:i+1], "/"))
			}
		}
		leaf := segs[len(segs)-1]
		if _, isTable := table[leaf].(map[string]any); isTable {
			return nil, fmt.Errorf("key %q conflicts with group of the same name", key)
		}
		table[leaf] = flat[key]
	}
	return doc, nil
}

func decodeScalar(v any) (any, error) {
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return int(i), nil
		}
		return n.Float64()
	}
	return normalize(v)
}
