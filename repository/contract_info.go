// Package repository records which contract and version a storage namespace
// was instantiated with.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/govm-net/counter/core"
)

// ContractInfoKey is the storage key of the version record.
const ContractInfoKey = "contract_info"

// ErrInvalidVersion is returned for versions that are not semantic versions.
var ErrInvalidVersion = errors.New("invalid contract version")

// ContractInfo names the contract code and version bound to an instance
type ContractInfo struct {
	Contract string `json:"contract"`
	Version  string `json:"version"`
}

// SemVer parses the stored version.
func (ci ContractInfo) SemVer() (*semver.Version, error) {
	v, err := semver.StrictNewVersion(ci.Version)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidVersion, ci.Version, err)
	}
	return v, nil
}

var contractInfo = core.NewItem[ContractInfo](ContractInfoKey)

// SetContractVersion validates version and stores the record, replacing any
// previous one.
func SetContractVersion(ctx context.Context, s core.Storage, name, version string) error {
	if name == "" {
		return fmt.Errorf("%w: empty contract name", core.ErrInvalidArgument)
	}
	info := ContractInfo{Contract: name, Version: version}
	if _, err := info.SemVer(); err != nil {
		return err
	}
	return contractInfo.Save(ctx, s, info)
}

// GetContractVersion loads the record. It returns an error wrapping
// core.ErrNotFound if no version was ever set.
func GetContractVersion(ctx context.Context, s core.Storage) (*ContractInfo, error) {
	info, err := contractInfo.Load(ctx, s)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// AssertContractVersion checks the stored record names contract and that
// its version satisfies constraint, e.g. "^0.1".
func AssertContractVersion(ctx context.Context, s core.Storage, contract, constraint string) error {
	info, err := GetContractVersion(ctx, s)
	if err != nil {
		return err
	}
	if info.Contract != contract {
		return fmt.Errorf("%w: stored contract %q, expected %q", core.ErrInvalidArgument, info.Contract, contract)
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("%w: constraint %q: %v", core.ErrInvalidArgument, constraint, err)
	}
	v, err := info.SemVer()
	if err != nil {
		return err
	}
	if !c.Check(v) {
		return fmt.Errorf("%w: version %s does not satisfy %s", ErrInvalidVersion, v, constraint)
	}
	return nil
}
