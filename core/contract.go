package core

import (
	"errors"
)

// Common errors returned by the contract and its collaborators
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("unauthorized operation")
	ErrNotFound        = errors.New("not found")
	ErrOverflow        = errors.New("arithmetic overflow")
)
