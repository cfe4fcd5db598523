// Package store provides the transactional key-value storage a contract
// instance is bound to, and a registry of backend implementations.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/govm-net/counter/core"
)

// ErrReadOnly is returned by Set on a storage view opened for reading.
var ErrReadOnly = errors.New("storage is read-only")

// Backend is a key-value store with transactional access.
type Backend interface {
	// Update runs fn in a transaction. Writes made through the storage
	// passed to fn become visible only if fn returns nil; otherwise they
	// are discarded.
	Update(ctx context.Context, fn func(core.Storage) error) error
	// View runs fn against a read-only view.
	View(ctx context.Context, fn func(core.Storage) error) error
	// Close releases the backend.
	Close() error
}

type readOnly struct {
	core.Storage
}

// ReadOnly wraps s so that every Set fails with ErrReadOnly.
func ReadOnly(s core.Storage) core.Storage {
	return readOnly{Storage: s}
}

func (readOnly) Set(_ context.Context, key []byte, _ []byte) error {
	return fmt.Errorf("set %q: %w", key, ErrReadOnly)
}

type prefixed struct {
	inner  core.Storage
	prefix []byte
}

// Prefixed returns a view of s in which every key is prepended with prefix.
func Prefixed(s core.Storage, prefix []byte) core.Storage {
	p := make([]byte, len(prefix))
	copy(p, prefix)
	return prefixed{inner: s, prefix: p}
}

func (p prefixed) key(k []byte) []byte {
	out := make([]byte, 0, len(p.prefix)+len(k))
	out = append(out, p.prefix...)
	return append(out, k...)
}

func (p prefixed) Get(ctx context.Context, key []byte) ([]byte, error) {
	return p.inner.Get(ctx, p.key(key))
}

func (p prefixed) Set(ctx context.Context, key []byte, value []byte) error {
	return p.inner.Set(ctx, p.key(key), value)
}
