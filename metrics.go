package deviceid

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Provider call outcomes used as the "result" label.
const (
	resultOK      = "ok"
	resultError   = "error"
	resultInvalid = "invalid"
	resultTimeout = "timeout"
)

type metrics struct {
	hashDerivations  prometheus.Counter
	sensorDegraded   *prometheus.CounterVec
	providerCalls    *prometheus.CounterVec
	providerDuration prometheus.Histogram
}

// newMetrics creates the Service collectors and registers them with reg.
// Collectors already registered with reg are reused. A nil reg leaves them
// unregistered.
func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		hashDerivations: register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "deviceid",
			Name:      "hash_derivations_total",
			Help:      "Number of device hash derivations.",
		})),
		sensorDegraded: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "deviceid",
			Name:      "sensor_degraded_total",
			Help:      "Number of attribute readings that fell back to a sentinel value.",
		}, []string{"component"})),
		providerCalls: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "deviceid",
			Name:      "provider_calls_total",
			Help:      "Number of external identifier provider calls by result.",
		}, []string{"result"})),
		providerDuration: register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "deviceid",
			Name:      "provider_call_duration_seconds",
			Help:      "Duration of external identifier provider calls.",
			Buckets:   prometheus.DefBuckets,
		})),
	}
}

// register adds c to reg, returning the collector reg already holds when an
// identical one was registered before.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if reg == nil {
		return c
	}

	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}

	return c
}
