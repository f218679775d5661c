package parser

import "encoding/json"

// Optional holds a value that may be absent.
type Optional[T any] struct {
	value   T
	present bool
}

// Some wraps a present value.
func Some[T any](value T) Optional[T] {
	return Optional[T]{value: value, present: true}
}

// None returns an absent value.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.present
}

// IsPresent reports whether a value is held.
func (o Optional[T]) IsPresent() bool {
	return o.present
}

// OrElse returns the value, or fallback when absent.
func (o Optional[T]) OrElse(fallback T) T {
	if o.present {
		return o.value
	}

	return fallback
}

// MarshalJSON encodes an absent value as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.present {
		return []byte("null"), nil
	}

	return json.Marshal(o.value)
}

// MarshalYAML encodes an absent value as null.
func (o Optional[T]) MarshalYAML() (any, error) {
	if !o.present {
		return nil, nil
	}

	return o.value, nil
}
