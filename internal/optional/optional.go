// Package optional contains the Value type, which models a value
// that may be absent. The upstream API encodes absence in several ad hoc
// ways (empty strings, "NULL", "NO VALUE ASSIGNED"); the normalizers
// map all of them to a None Value.
package optional

import "github.com/civic311/dc311/internal/runtimex"

// Value is an optional value. The zero value is None.
type Value[Type any] struct {
	indirect *Type
}

// None constructs an empty value.
func None[Type any]() Value[Type] {
	return Value[Type]{nil}
}

// Some constructs a some value. Passing a nil pointer, map, or
// slice still constructs a non-empty Value.
func Some[Type any](value Type) Value[Type] {
	return Value[Type]{&value}
}

// IsNone returns whether this Value is empty.
func (v Value[Type]) IsNone() bool {
	return v.indirect == nil
}

// Unwrap returns the underlying value or panics. In case of
// panic, the value passed to panic is an error.
func (v Value[Type]) Unwrap() Type {
	runtimex.Assert(!v.IsNone(), "is none")
	return *v.indirect
}

// UnwrapOr returns the fallback if the Value is empty.
func (v Value[Type]) UnwrapOr(fallback Type) Type {
	if v.IsNone() {
		return fallback
	}
	return v.Unwrap()
}

// Ptr returns a pointer to a copy of the underlying value, or nil
// when the Value is empty.
func (v Value[Type]) Ptr() *Type {
	if v.IsNone() {
		return nil
	}
	value := *v.indirect
	return &value
}
