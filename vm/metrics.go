package vm

import (
	"errors"
	"time"

	"github.com/govm-net/counter/core"
	"github.com/govm-net/counter/store"
	"github.com/govm-net/counter/types"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels of counter_entry_point_calls_total
const (
	outcomeOK           = "ok"
	outcomeUnauthorized = "unauthorized"
	outcomeOverflow     = "overflow"
	outcomeInvalid      = "invalid_message"
	outcomeNotFound     = "not_found"
	outcomeRejected     = "rejected"
	outcomeError        = "error"
)

type metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics() (*prometheus.Registry, *metrics, error) {
	r := prometheus.NewRegistry()
	m := &metrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "counter",
			Name:      "entry_point_calls_total",
			Help:      "number of entry point invocations by outcome",
		}, []string{"entry_point", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "counter",
			Name:      "entry_point_duration_seconds",
			Help:      "time spent in an entry point including storage commit",
			Buckets:   prometheus.DefBuckets,
		}, []string{"entry_point"}),
	}
	for _, c := range []prometheus.Collector{m.calls, m.duration} {
		if err := r.Register(c); err != nil {
			return nil, nil, err
		}
	}
	return r, m, nil
}

func (m *metrics) observe(entryPoint string, start time.Time, err error) {
	m.calls.WithLabelValues(entryPoint, outcome(err)).Inc()
	m.duration.WithLabelValues(entryPoint).Observe(time.Since(start).Seconds())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, core.ErrUnauthorized):
		return outcomeUnauthorized
	case errors.Is(err, core.ErrOverflow):
		return outcomeOverflow
	case errors.Is(err, types.ErrInvalidMessage):
		return outcomeInvalid
	case errors.Is(err, core.ErrNotFound):
		return outcomeNotFound
	case errors.Is(err, ErrAlreadyInstantiated), errors.Is(err, store.ErrReadOnly):
		return outcomeRejected
	default:
		return outcomeError
	}
}
