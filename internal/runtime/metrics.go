package runtime

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	loadsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ttsd",
			Subsystem: "runtime",
			Name:      "loads_total",
			Help:      "Total number of successful engine loads",
		},
	)

	loadFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ttsd",
			Subsystem: "runtime",
			Name:      "load_failures_total",
			Help:      "Total number of failed engine loads",
		},
	)

	unloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ttsd",
			Subsystem: "runtime",
			Name:      "unloads_total",
			Help:      "Total number of engine unloads by reason",
		},
		[]string{"reason"},
	)

	cpuFallbackRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ttsd",
			Subsystem: "runtime",
			Name:      "cpu_fallback_retries_total",
			Help:      "Total number of one-shot CPU-fallback reloads triggered during synthesis",
		},
	)

	synthesisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ttsd",
			Subsystem: "runtime",
			Name:      "synthesis_duration_seconds",
			Help:      "Duration of synthesis calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"mode", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(loadsTotal, loadFailuresTotal, unloadsTotal, cpuFallbackRetriesTotal, synthesisDuration)
}
