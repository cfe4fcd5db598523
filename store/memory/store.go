// Package memory provides an in-memory store.Backend. Writes made inside
// Update are staged and merged only when the transaction succeeds.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/govm-net/counter/core"
	"github.com/govm-net/counter/store"
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("memory store closed")

func init() {
	store.Register(store.MemoryBackendType, func(map[string]any) (store.Backend, error) {
		return NewStore(), nil
	})
}

// Store is a map-backed key-value store. It implements both store.Backend
// and core.Storage; the latter writes directly without a transaction.
type Store struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		data: make(map[string][]byte),
	}
}

// Get implements core.Storage
func (s *Store) Get(_ context.Context, key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	return get(s.data, key)
}

// Set implements core.Storage
func (s *Store) Set(_ context.Context, key []byte, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.data[string(key)] = clone(value)
	return nil
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Update implements store.Backend
func (s *Store) Update(ctx context.Context, fn func(core.Storage) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	tx := &txn{base: s.data, writes: make(map[string][]byte)}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	for k, v := range tx.writes {
		s.data[k] = v
	}
	return nil
}

// View implements store.Backend
func (s *Store) View(_ context.Context, fn func(core.Storage) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return fn(store.ReadOnly(snapshot(s.data)))
}

// Close implements store.Backend
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// txn overlays staged writes on the committed data. The owning Store holds
// its write lock for the lifetime of the txn.
type txn struct {
	base   map[string][]byte
	writes map[string][]byte
}

func (t *txn) Get(_ context.Context, key []byte) ([]byte, error) {
	if v, ok := t.writes[string(key)]; ok {
		return clone(v), nil
	}
	return get(t.base, key)
}

func (t *txn) Set(_ context.Context, key []byte, value []byte) error {
	t.writes[string(key)] = clone(value)
	return nil
}

type snapshot map[string][]byte

func (s snapshot) Get(_ context.Context, key []byte) ([]byte, error) {
	return get(s, key)
}

func (s snapshot) Set(context.Context, []byte, []byte) error {
	return store.ErrReadOnly
}

func get(data map[string][]byte, key []byte) ([]byte, error) {
	v, ok := data[string(key)]
	if !ok {
		return nil, fmt.Errorf("key %q: %w", key, core.ErrNotFound)
	}
	return clone(v), nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
