package hostfuncs

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric outcome label values.
const (
	OutcomeOK            = "ok"
	OutcomeErrorResponse = "error_response"
	OutcomeFailure       = "failure"
)

// Metrics holds the Prometheus collectors used by MetricsMiddleware.
type Metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the host call collectors and registers them with reg.
// A collector that is already registered is reused, so several registries
// can share one Prometheus registerer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sumstring",
		Subsystem: "host",
		Name:      "calls_total",
		Help:      "Host function invocations by function and outcome.",
	}, []string{"function", "outcome"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sumstring",
		Subsystem: "host",
		Name:      "call_duration_seconds",
		Help:      "Host function latency.",
		Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
	}, []string{"function"})

	var err error
	if calls, err = registerOrReuse(reg, calls); err != nil {
		return nil, err
	}
	if duration, err = registerOrReuse(reg, duration); err != nil {
		return nil, err
	}
	return &Metrics{calls: calls, duration: duration}, nil
}

func registerOrReuse[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// MetricsMiddleware returns a middleware that counts calls and observes latency.
func MetricsMiddleware(m *Metrics) Middleware {
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			name := functionName(ctx)
			start := time.Now()
			resp, err := next(ctx, payload)
			m.duration.WithLabelValues(name).Observe(time.Since(start).Seconds())

			outcome := OutcomeOK
			if err != nil {
				outcome = OutcomeFailure
			} else if _, isErr := ParseErrorResponse(resp); isErr {
				outcome = OutcomeErrorResponse
			}
			m.calls.WithLabelValues(name, outcome).Inc()
			return resp, err
		}
	}
}
