package counter

import (
	"context"
	"fmt"
	"math"

	"github.com/govm-net/counter/core"
)

// CheckedMath is the native core.Arithmetic. It widens to int64 and rejects
// results outside the int32 range.
type CheckedMath struct{}

func (CheckedMath) Add(_ context.Context, a, b int32) (int32, error) {
	return narrow(int64(a)+int64(b), "%d + %d", a, b)
}

func (CheckedMath) Sub(_ context.Context, a, b int32) (int32, error) {
	return narrow(int64(a)-int64(b), "%d - %d", a, b)
}

func narrow(v int64, format string, a, b int32) (int32, error) {
	if v > math.MaxInt32 || v < math.MinInt32 {
		return 0, fmt.Errorf("%w: "+format, core.ErrOverflow, a, b)
	}
	return int32(v), nil
}
