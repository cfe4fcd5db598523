package vm

import (
	"context"

	"github.com/looplab/fsm"
	"go.uber.org/zap"
)

// Lifecycle states of a contract instance
const (
	StateUninitialized = "uninitialized"
	StateActive        = "active"

	EventInstantiate = "instantiate"
)

func newLifecycle(initial string, log *zap.SugaredLogger) *fsm.FSM {
	return fsm.NewFSM(
		initial,
		fsm.Events{
			{Name: EventInstantiate, Src: []string{StateUninitialized}, Dst: StateActive},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				log.Infow("lifecycle transition", "event", e.Event, "from", e.Src, "to", e.Dst)
			},
		},
	)
}
