package backend

import (
	"errors"
	"time"

	"github.com/erfanjahi0/pulsechat/pkg/proto"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opReserveInitial = "reserve_initial"
	opReserveChange  = "reserve_change"
	opIsAvailable    = "is_available"
	opLookup         = "lookup"
)

var (
	handleOpsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pulse",
		Subsystem: "handle",
		Name:      "ops_total",
		Help:      "The total number of handle operations by result",
	}, []string{"op", "result"})

	handleOpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pulse",
		Subsystem: "handle",
		Name:      "op_duration_seconds",
		Help:      "Handle operation latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})

	reservationsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "pulse",
		Subsystem: "handle",
		Name:      "reservations",
		Help:      "The number of reserved handles",
	})
)

// observe records the outcome of a handle operation started at start.
func observe(op string, start time.Time, err error) {
	handleOpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	handleOpsCounter.WithLabelValues(op, result(err)).Inc()
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, proto.ErrHandleTaken):
		return "taken"
	case errors.Is(err, proto.ErrCooldownActive):
		return "cooldown"
	case errors.Is(err, proto.ErrInvalidHandle):
		return "invalid"
	case errors.Is(err, proto.ErrHandleNotFound), errors.Is(err, proto.ErrAccountNotFound):
		return "not_found"
	case errors.Is(err, proto.ErrTransactionConflict):
		return "conflict"
	case errors.Is(err, proto.ErrStorageUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
