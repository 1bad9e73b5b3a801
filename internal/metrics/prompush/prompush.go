// Package prompush implements a Prometheus Pushgateway backend for the
// internal/metrics package. Samples accumulate in a private registry and are
// pushed as one grouping (keyed by job name) on Flush. Short-lived pipeline
// runs push once at exit; that is the model the Pushgateway is built for.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"fleximart/internal/metrics"
)

// Backend implements metrics.Backend against a Pushgateway.
type Backend struct {
	pusher *push.Pusher
	reg    *prometheus.Registry

	steps   *prometheus.CounterVec
	records *prometheus.CounterVec
	batches prometheus.Counter
	stepDur *prometheus.HistogramVec
}

// NewBackend builds a backend pushing to gatewayURL under jobName.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if jobName == "" {
		return nil, fmt.Errorf("prompush: empty job name")
	}
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: empty gateway URL")
	}

	reg := prometheus.NewRegistry()

	steps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "etl_step_total",
		Help: "Pipeline steps executed, by step and status.",
	}, []string{"step", "status"})
	records := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "etl_records_total",
		Help: "Records processed, by kind.",
	}, []string{"kind"})
	batches := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "etl_batches_total",
		Help: "Batches processed.",
	})
	stepDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "etl_step_duration_seconds",
		Help:    "Pipeline step durations.",
		Buckets: prometheus.DefBuckets,
	}, []string{"step", "status"})

	reg.MustRegister(steps, records, batches, stepDur)

	return &Backend{
		pusher:  push.New(gatewayURL, jobName).Gatherer(reg),
		reg:     reg,
		steps:   steps,
		records: records,
		batches: batches,
		stepDur: stepDur,
	}, nil
}

// IncCounter implements metrics.Backend. Unknown metric names are ignored so
// backends stay decoupled from the instrumentation call sites.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if delta <= 0 {
		return
	}
	switch name {
	case "etl_step_total":
		b.steps.WithLabelValues(labels["step"], labels["status"]).Add(delta)
	case "etl_records_total":
		kind := labels["kind"]
		if kind == "" {
			return
		}
		b.records.WithLabelValues(kind).Add(delta)
	case "etl_batches_total":
		b.batches.Add(delta)
	}
}

// ObserveHistogram implements metrics.Backend.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if value < 0 {
		return
	}
	switch name {
	case "etl_step_duration_seconds":
		b.stepDur.WithLabelValues(labels["step"], labels["status"]).Observe(value)
	}
}

// Flush pushes the accumulated registry to the gateway.
func (b *Backend) Flush() error {
	if err := b.pusher.Push(); err != nil {
		return fmt.Errorf("prompush: push: %w", err)
	}
	return nil
}

var _ metrics.Backend = (*Backend)(nil)
