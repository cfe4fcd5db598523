package counter

import (
	"fmt"
	"strconv"

	"github.com/govm-net/counter/core"
	"github.com/govm-net/counter/types"
)

const (
	defaultStep       int32 = 1
	defaultResetValue int32 = 0
)

// Reset sets count to the given value, or 0, and bumps the reset tally.
// Only the owner may reset.
func Reset(deps Deps, info types.MessageInfo, count core.Optional[int32]) (*types.Response, error) {
	state, err := stateItem.Update(deps.Ctx, deps.Storage, func(s State) (State, error) {
		if info.Sender != s.Owner {
			return s, fmt.Errorf("%w: reset requires owner %s, sender %s", core.ErrUnauthorized, s.Owner, info.Sender)
		}
		tally, err := deps.math().Add(deps.Ctx, s.ResetCount, 1)
		if err != nil {
			return s, fmt.Errorf("reset count: %w", err)
		}
		s.Count = count.UnwrapOr(defaultResetValue)
		s.ResetCount = tally
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return countResponse("reset", state.Count), nil
}

// Increment adds amount, or 1, to count. Anyone may increment.
func Increment(deps Deps, amount core.Optional[int32]) (*types.Response, error) {
	state, err := stateItem.Update(deps.Ctx, deps.Storage, func(s State) (State, error) {
		next, err := deps.math().Add(deps.Ctx, s.Count, amount.UnwrapOr(defaultStep))
		if err != nil {
			return s, fmt.Errorf("increment: %w", err)
		}
		s.Count = next
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return countResponse("increment", state.Count), nil
}

// Decrement subtracts amount, or 1, from count. Anyone may decrement.
func Decrement(deps Deps, amount core.Optional[int32]) (*types.Response, error) {
	state, err := stateItem.Update(deps.Ctx, deps.Storage, func(s State) (State, error) {
		next, err := deps.math().Sub(deps.Ctx, s.Count, amount.UnwrapOr(defaultStep))
		if err != nil {
			return s, fmt.Errorf("decrement: %w", err)
		}
		s.Count = next
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return countResponse("decrement", state.Count), nil
}

func countResponse(action string, count int32) *types.Response {
	return types.NewResponse().
		AddAttribute("action", action).
		AddAttribute("count", strconv.FormatInt(int64(count), 10))
}
