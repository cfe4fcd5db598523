package counter

import "github.com/govm-net/counter/core"

// State is the single record owned by a counter instance.
type State struct {
	Count      int32        `json:"count"`
	Owner      core.Address `json:"owner"`
	ResetCount int32        `json:"reset_count"`
}

// StateKey is the storage key of the record.
const StateKey = "state"

var stateItem = core.NewItem[State](StateKey)

// LoadState reads the record. Returns an error wrapping core.ErrNotFound on an
// uninitialized instance.
func LoadState(deps Deps) (State, error) {
	return stateItem.Load(deps.Ctx, deps.Storage)
}
