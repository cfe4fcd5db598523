package counter

import "github.com/govm-net/counter/types"

// GetCount returns the current count.
func GetCount(deps Deps) (types.GetCountResponse, error) {
	state, err := LoadState(deps)
	if err != nil {
		return types.GetCountResponse{}, err
	}
	return types.GetCountResponse{Count: state.Count}, nil
}

// GetResetCount returns how many resets have succeeded.
func GetResetCount(deps Deps) (types.GetResetCountResponse, error) {
	state, err := LoadState(deps)
	if err != nil {
		return types.GetResetCountResponse{}, err
	}
	return types.GetResetCountResponse{ResetCount: state.ResetCount}, nil
}
