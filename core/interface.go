// Package core defines the types and collaborator interfaces shared by the
// counter contract and the host that runs it.
package core

import (
	"context"
	"encoding/hex"
)

// Address identifies a caller. The contract treats it as opaque and only
// compares it for equality.
type Address [20]byte

var ZeroAddress = Address{}

func (addr Address) String() string {
	return hex.EncodeToString(addr[:])
}

// IsZero reports whether addr is the zero address.
func (addr Address) IsZero() bool {
	return addr == ZeroAddress
}

func (addr Address) MarshalText() ([]byte, error) {
	return []byte(addr.String()), nil
}

func (addr *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*addr = parsed
	return nil
}

// Storage is the key-value store a contract instance reads and writes.
// Get returns ErrNotFound when the key has never been set.
type Storage interface {
	Get(ctx context.Context, key []byte) ([]byte, error)
	Set(ctx context.Context, key []byte, value []byte) error
}

// Arithmetic evaluates counter updates. Implementations must return
// ErrOverflow instead of wrapping when a result leaves the int32 range.
type Arithmetic interface {
	Add(ctx context.Context, a, b int32) (int32, error)
	Sub(ctx context.Context, a, b int32) (int32, error)
}
