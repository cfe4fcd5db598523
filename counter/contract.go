// Package counter implements the counter contract: a signed counter with an
// owner who alone may reset it, and a tally of successful resets.
//
// The contract does no locking. Each mutating operation is a single
// load/compute/save against the record, and the host must run it inside a
// transaction so that a failed operation leaves nothing behind.
package counter

import (
	"context"
	"strconv"

	"github.com/govm-net/counter/core"
	"github.com/govm-net/counter/types"
)

// Deps bundles the collaborators of one invocation.
type Deps struct {
	Ctx     context.Context
	Storage core.Storage
	// Math defaults to CheckedMath when nil.
	Math core.Arithmetic
}

func (d Deps) math() core.Arithmetic {
	if d.Math == nil {
		return CheckedMath{}
	}
	return d.Math
}

// Instantiate creates the record with the caller as owner. Any previous
// record at the slot is overwritten.
func Instantiate(deps Deps, info types.MessageInfo, msg types.InstantiateMsg) (*types.Response, error) {
	state := State{
		Count:      msg.Count,
		Owner:      info.Sender,
		ResetCount: 0,
	}
	if err := stateItem.Save(deps.Ctx, deps.Storage, state); err != nil {
		return nil, err
	}

	return types.NewResponse().
		AddAttribute("method", "instantiate").
		AddAttribute("owner", info.Sender.String()).
		AddAttribute("count", strconv.FormatInt(int64(msg.Count), 10)), nil
}

// Execute dispatches msg to the matching operation.
func Execute(deps Deps, info types.MessageInfo, msg types.ExecuteMsg) (*types.Response, error) {
	if _, err := msg.Variant(); err != nil {
		return nil, err
	}
	switch {
	case msg.Reset != nil:
		return Reset(deps, info, msg.Reset.Count)
	case msg.Increment != nil:
		return Increment(deps, msg.Increment.Amount)
	default:
		return Decrement(deps, msg.Decrement.Amount)
	}
}

// Query dispatches msg and returns the encoded response.
func Query(deps Deps, msg types.QueryMsg) ([]byte, error) {
	if _, err := msg.Variant(); err != nil {
		return nil, err
	}
	if msg.GetCount != nil {
		res, err := GetCount(deps)
		if err != nil {
			return nil, err
		}
		return types.Encode(res)
	}
	res, err := GetResetCount(deps)
	if err != nil {
		return nil, err
	}
	return types.Encode(res)
}
