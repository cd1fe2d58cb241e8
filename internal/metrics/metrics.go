// Package metrics exposes Prometheus collectors for evaluations and the HTTP
// API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Evaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affordability_evaluations_total",
			Help: "Total number of formula evaluations by verdict status",
		},
		[]string{"tier", "status"},
	)

	CorrectionsOffered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affordability_corrections_offered_total",
			Help: "Total number of corrections offered by kind",
		},
		[]string{"kind"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affordability_cache_lookups_total",
			Help: "Total number of evaluation cache lookups by result",
		},
		[]string{"result"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "affordability_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "code"},
	)
)

// ObserveVerdict records one evaluation outcome.
func ObserveVerdict(tier, status string, correctionKinds ...string) {
	Evaluations.WithLabelValues(tier, status).Inc()
	for _, kind := range correctionKinds {
		CorrectionsOffered.WithLabelValues(kind).Inc()
	}
}

// ObserveCache records a cache hit or miss.
func ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(result).Inc()
}

// ObserveRequest records how long a route took to answer.
func ObserveRequest(route, code string, elapsed time.Duration) {
	RequestDuration.WithLabelValues(route, code).Observe(elapsed.Seconds())
}
