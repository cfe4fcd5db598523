// Package api defines the surface a host exposes to run the counter contract.
// It is used by hosts and tools, not by the contract itself.
package api

import (
	"context"
	"crypto/sha256"

	"github.com/govm-net/counter/core"
	"github.com/govm-net/counter/types"
)

// Contract is the entry-point surface of one contract instance. Messages
// are JSON encoded as described in package types.
type Contract interface {
	// Instantiate creates the instance record with sender as owner
	Instantiate(ctx context.Context, sender core.Address, msg []byte) (*types.Response, error)

	// Execute applies an ExecuteMsg on behalf of sender
	Execute(ctx context.Context, sender core.Address, msg []byte) (*types.Response, error)

	// Query answers a QueryMsg without mutating state
	Query(ctx context.Context, msg []byte) ([]byte, error)
}

const (
	// ContractName is stamped into the version record on instantiate
	ContractName = "govm-net:counter"
	// ContractVersion is the semantic version stamped alongside ContractName
	ContractVersion = "0.1.0"
)

// ContractConfig identifies the code an instance runs
type ContractConfig struct {
	Name    string
	Version string
}

// DefaultContractConfig returns the name and version of this build
func DefaultContractConfig() ContractConfig {
	return ContractConfig{
		Name:    ContractName,
		Version: ContractVersion,
	}
}

// DefaultContractAddressGenerator derives a contract address from its code
// identifier and creator.
var DefaultContractAddressGenerator = func(code []byte, creator core.Address) core.Address {
	h := sha256.New()
	h.Write(code)
	h.Write(creator[:])
	var addr core.Address
	copy(addr[:], h.Sum(nil))
	return addr
}

// DefaultContractAddress is the address used when none is configured
func DefaultContractAddress() core.Address {
	return DefaultContractAddressGenerator([]byte(ContractName), core.ZeroAddress)
}
