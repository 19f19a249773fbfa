package settings

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownKey indicates the key is not part of the schema.
	ErrUnknownKey = errors.New("settings: unknown key")

	// ErrTypeConversion indicates a raw value could not be coerced.
	ErrTypeConversion = errors.New("settings: type conversion failed")

	// ErrAmbiguousKey indicates a type hint was given for a schema key.
	ErrAmbiguousKey = errors.New("settings: ambiguous key")
)

// UnknownKeyError is returned when a key does not resolve in the schema.
type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("no such application setting: %q", e.Key)
}

func (e *UnknownKeyError) Is(target error) bool {
	return target == ErrUnknownKey
}

// TypeConversionError is returned when a raw value cannot be turned into
// the type required by the schema or a hint.
type TypeConversionError struct {
	Key   string
	Value any
	Kind  Kind
	Err   error
}

func (e *TypeConversionError) Error() string {
	msg := fmt.Sprintf("cannot convert %#v to %s", e.Value, e.Kind)
	if e.Key != "" {
		msg = fmt.Sprintf("setting %q: %s", e.Key, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TypeConversionError) Unwrap() error {
	return e.Err
}

func (e *TypeConversionError) Is(target error) bool {
	return target == ErrTypeConversion
}

// AmbiguousKeyError is returned by [Store.Hinted] for keys the schema
// already knows. Use [Store.Value] for those.
type AmbiguousKeyError struct {
	Key  string
	Hint Kind
}

func (e *AmbiguousKeyError) Error() string {
	return fmt.Sprintf("setting %q is defined by the schema; a %s type hint is not allowed", e.Key, e.Hint)
}

func (e *AmbiguousKeyError) Is(target error) bool {
	return target == ErrAmbiguousKey
}
