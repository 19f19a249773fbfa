package settings

import (
	"fmt"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// Kind is the scalar type of a setting.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	}
	return "invalid"
}

// ParseKind parses a kind name as printed by [Kind.String].
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "bool", "boolean":
		return KindBool, nil
	case "int", "integer":
		return KindInt, nil
	case "float", "double":
		return KindFloat, nil
	case "string", "str":
		return KindString, nil
	}
	return KindInvalid, fmt.Errorf("unknown type %q: must be bool, int, float or string", s)
}

// KindOf returns the kind of v when v is exactly one of bool, int, float64
// or string. Other types return KindInvalid.
func KindOf(v any) Kind {
	switch v.(type) {
	case bool:
		return KindBool
	case int:
		return KindInt
	case float64:
		return KindFloat
	case string:
		return KindString
	}
	return KindInvalid
}

// node is either a leaf (children == nil) or a group.
type node struct {
	children map[string]*node
	value    any
}

// Schema is an immutable tree of default values.
type Schema struct {
	root *node
}

// NewSchema builds a schema from a nested map literal. Nested maps become
// groups; leaves must be booleans, integers, floats or strings. The input is
// copied, later changes to it do not affect the schema.
func NewSchema(defaults map[string]any) (*Schema, error) {
	root, err := buildGroup("", defaults)
	if err != nil {
		return nil, err
	}
	return &Schema{root: root}, nil
}

// MustSchema is like NewSchema but panics on error.
func MustSchema(defaults map[string]any) *Schema {
	s, err := NewSchema(defaults)
	if err != nil {
		panic(err)
	}
	return s
}

// ParseSchema builds a schema from TOML text. Tables become groups.
func ParseSchema(data []byte) (*Schema, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	return NewSchema(raw)
}

func buildGroup(path string, m map[string]any) (*node, error) {
	n := &node{children: make(map[string]*node, len(m))}
	for name, v := range m {
		if name == "" || strings.Contains(name, "/") {
			return nil, fmt.Errorf("schema: invalid segment %q under %q", name, path)
		}
		childPath := joinKey(path, name)
		if sub, ok := v.(map[string]any); ok {
			child, err := buildGroup(childPath, sub)
			if err != nil {
				return nil, err
			}
			n.children[name] = child
			continue
		}
		val, ok := normalizeScalar(v)
		if !ok {
			return nil, fmt.Errorf("schema: unsupported default %T for %q", v, childPath)
		}
		n.children[name] = &node{value: val}
	}
	return n, nil
}

// Default returns the schema default for key.
func (s *Schema) Default(key string) (any, error) {
	n := s.root
	for _, seg := range splitKey(key) {
		if n.children == nil {
			return nil, &UnknownKeyError{Key: key}
		}
		next, ok := n.children[seg]
		if !ok {
			return nil, &UnknownKeyError{Key: key}
		}
		n = next
	}
	if n.children != nil {
		return nil, &UnknownKeyError{Key: key}
	}
	return n.value, nil
}

// KindOf returns the kind of the default for key.
func (s *Schema) KindOf(key string) (Kind, error) {
	def, err := s.Default(key)
	if err != nil {
		return KindInvalid, err
	}
	return KindOf(def), nil
}

// Has reports whether key resolves to a default.
func (s *Schema) Has(key string) bool {
	_, err := s.Default(key)
	return err == nil
}

// Keys returns all leaf keys in sorted order.
func (s *Schema) Keys() []string {
	var keys []string
	var walk func(prefix string, n *node)
	walk = func(prefix string, n *node) {
		for name, child := range n.children {
			key := joinKey(prefix, name)
			if child.children == nil {
				keys = append(keys, key)
				continue
			}
			walk(key, child)
		}
	}
	walk("", s.root)
	slices.Sort(keys)
	return keys
}

// CleanKey strips leading and trailing separators.
func CleanKey(key string) string {
	return strings.Trim(key, "/")
}

// splitKey returns the path segments of key. An empty key yields a single
// empty segment so that it never resolves.
func splitKey(key string) []string {
	return strings.Split(CleanKey(key), "/")
}

func joinKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// normalizeScalar maps the integer and float families onto int and float64.
func normalizeScalar(v any) (any, bool) {
	switch x := v.(type) {
	case bool, string, int, float64:
		return x, true
	case int8:
		return int(x), true
	case int16:
		return int(x), true
	case int32:
		return int(x), true
	case int64:
		return int(x), true
	case uint8:
		return int(x), true
	case uint16:
		return int(x), true
	case uint32:
		return int(x), true
	case float32:
		return float64(x), true
	}
	return nil, false
}
