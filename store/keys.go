package store

import (
	"github.com/govm-net/counter/core"
)

const contractPrefix = 'c'

// ContractPrefix returns the key prefix of a contract's storage namespace.
// Format: 'c' + contract_address
func ContractPrefix(contract core.Address) []byte {
	return append([]byte{contractPrefix}, contract[:]...)
}

// ContractStorage returns the storage namespace of contract inside s.
func ContractStorage(s core.Storage, contract core.Address) core.Storage {
	return Prefixed(s, ContractPrefix(contract))
}
