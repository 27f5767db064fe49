// Package metrics instruments the orchestrator's operation counts, outcomes,
// and health-probe latency with a dedicated prometheus registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the process's prometheus collectors. It is safe to scrape
// via promhttp.HandlerFor(reg.Registerer, ...) from cmd/swagconfd.
type Registry struct {
	Registerer *prometheus.Registry

	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	backups    prometheus.Counter
	healthOK   prometheus.Counter
	healthFail prometheus.Counter
	healthMS   prometheus.Histogram
}

// New builds and registers every collector.
func New() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		Registerer: reg,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "swagconfd",
			Name:      "operations_total",
			Help:      "Count of orchestrator operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "swagconfd",
			Name:      "operation_duration_seconds",
			Help:      "Orchestrator operation latency by name.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		backups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swagconfd",
			Name:      "backups_created_total",
			Help:      "Count of backups created across all mutation operations.",
		}),
		healthOK: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swagconfd",
			Name:      "health_probe_success_total",
			Help:      "Count of successful health probes.",
		}),
		healthFail: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swagconfd",
			Name:      "health_probe_failure_total",
			Help:      "Count of failed health probes.",
		}),
		healthMS: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "swagconfd",
			Name:      "health_probe_response_ms",
			Help:      "Health probe wall-clock response time in milliseconds.",
			Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}),
	}

	reg.MustRegister(r.operations, r.duration, r.backups, r.healthOK, r.healthFail, r.healthMS)
	return r
}

// Start records the beginning of an operation and returns a function to call
// at its end, recording duration and marking the operation completed.
func (r *Registry) Start(operation string) func() {
	begin := time.Now()
	return func() {
		r.duration.WithLabelValues(operation).Observe(time.Since(begin).Seconds())
		r.operations.WithLabelValues(operation, "completed").Inc()
	}
}

// ObserveHealth records one probe outcome.
func (r *Registry) ObserveHealth(success bool, responseMS int64) {
	if success {
		r.healthOK.Inc()
	} else {
		r.healthFail.Inc()
	}
	r.healthMS.Observe(float64(responseMS))
}

// BackupCreated increments the backups-created counter.
func (r *Registry) BackupCreated() {
	r.backups.Inc()
}
