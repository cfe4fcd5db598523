package core

import (
	"bytes"

	"github.com/goccy/go-json"
)

// Optional holds either no value or exactly one value of type T. In JSON an
// absent field or null decodes to None.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// None returns an empty Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

func (o Optional[T]) IsSome() bool {
	return o.set
}

// Get returns the held value and whether one is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// UnwrapOr returns the held value, or def when o is None.
func (o Optional[T]) UnwrapOr(def T) T {
	if !o.set {
		return def
	}
	return o.value
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = None[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
