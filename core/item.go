package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// Item is a typed accessor for a record stored under a single fixed key.
type Item[T any] struct {
	key []byte
}

// NewItem returns an Item bound to key.
func NewItem[T any](key string) Item[T] {
	return Item[T]{key: []byte(key)}
}

// Key returns the storage key of the item.
func (i Item[T]) Key() []byte {
	return i.key
}

// Load reads the record. A missing record is reported as ErrNotFound.
func (i Item[T]) Load(ctx context.Context, s Storage) (T, error) {
	var out T
	data, err := s.Get(ctx, i.key)
	if err != nil {
		return out, fmt.Errorf("load %s: %w", i.key, err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode %s: %w", i.key, err)
	}
	return out, nil
}

// MayLoad is like Load but reports a missing record as (nil, nil).
func (i Item[T]) MayLoad(ctx context.Context, s Storage) (*T, error) {
	v, err := i.Load(ctx, s)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Save encodes v and writes it under the item's key.
func (i Item[T]) Save(ctx context.Context, s Storage, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", i.key, err)
	}
	if err := s.Set(ctx, i.key, data); err != nil {
		return fmt.Errorf("save %s: %w", i.key, err)
	}
	return nil
}

// Update loads the record, applies fn and saves the result. Nothing is
// written when fn returns an error.
func (i Item[T]) Update(ctx context.Context, s Storage, fn func(T) (T, error)) (T, error) {
	current, err := i.Load(ctx, s)
	if err != nil {
		return current, err
	}
	next, err := fn(current)
	if err != nil {
		return current, err
	}
	if err := i.Save(ctx, s, next); err != nil {
		return current, err
	}
	return next, nil
}
