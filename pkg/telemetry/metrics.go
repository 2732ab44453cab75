// Package telemetry wires Prometheus metrics and OpenTelemetry tracing for
// location requests.
package telemetry

import (
	stderrors "errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records location request outcomes. It implements geolocation.Recorder.
type Metrics struct {
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	discarded *prometheus.CounterVec
}

// NewMetrics creates the request metrics and registers them with reg
// (prometheus.DefaultRegisterer when nil). Registering twice reuses the
// collectors already in the registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gpslocation",
				Name:      "requests_total",
				Help:      "Total number of resolved location requests",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "gpslocation",
				Name:      "request_duration_seconds",
				Help:      "Time from request start to resolution",
				Buckets:   []float64{.001, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"outcome"},
		),
		discarded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gpslocation",
				Name:      "discarded_results_total",
				Help:      "Native or timer completions that arrived after their request resolved",
			},
			[]string{"source"},
		),
	}

	var err error
	if m.requests, err = register(reg, m.requests); err != nil {
		return nil, err
	}
	if m.duration, err = register(reg, m.duration); err != nil {
		return nil, err
	}
	if m.discarded, err = register(reg, m.discarded); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if stderrors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// ObserveRequest counts a resolved request and records its duration.
func (m *Metrics) ObserveRequest(outcome string, elapsed time.Duration) {
	m.requests.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// ObserveDiscarded counts a completion that lost the race.
func (m *Metrics) ObserveDiscarded(source string) {
	m.discarded.WithLabelValues(source).Inc()
}
