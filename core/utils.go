package core

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// ParseAddress converts a hex string to an Address. A 0x prefix is accepted.
func ParseAddress(s string) (Address, error) {
	var addr Address

	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != 2*len(addr) {
		return addr, fmt.Errorf("%w: address must be %d hex characters, got %d", ErrInvalidArgument, 2*len(addr), len(s))
	}

	bytes, err := hex.DecodeString(s)
	if err != nil {
		return addr, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	copy(addr[:], bytes)
	return addr, nil
}

// MustParseAddress is like ParseAddress but panics on malformed input.
func MustParseAddress(s string) Address {
	addr, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}
