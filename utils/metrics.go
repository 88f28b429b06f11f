package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheOperations counts appointment cache operations by op and outcome.
	CacheOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "medibot",
		Name:      "cache_operations_total",
		Help:      "Appointment cache operations by operation and outcome.",
	}, []string{"op", "outcome"})

	// ClassifierCalls counts intent classification calls by outcome.
	ClassifierCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "medibot",
		Name:      "classifier_calls_total",
		Help:      "Intent classification calls by outcome.",
	}, []string{"outcome"})

	// ClassifierLatency observes how long the classifier takes to answer.
	ClassifierLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "medibot",
		Name:      "classifier_latency_seconds",
		Help:      "Latency of intent classification calls.",
		Buckets:   prometheus.DefBuckets,
	})
)

// Outcome maps an error to the label used on the counters above.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
