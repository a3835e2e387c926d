// telemetry/metrics.go
package telemetry

import "github.com/prometheus/client_golang/prometheus"

var (
	// reconstructionFailures counts cache entries that were skipped because
	// they could not be decoded into a security group view.
	reconstructionFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clouddriver_reconstruction_failures_total",
			Help: "Total number of cache entries skipped during view reconstruction",
		},
		[]string{"namespace"},
	)

	// cacheEntriesAccepted counts entries merged into the cache per namespace.
	cacheEntriesAccepted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clouddriver_cache_entries_accepted_total",
			Help: "Total number of entries accepted into the cache",
		},
		[]string{"namespace"},
	)

	// cacheEntriesRejected counts entries refused during cache population.
	cacheEntriesRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clouddriver_cache_entries_rejected_total",
			Help: "Total number of entries rejected during cache population",
		},
		[]string{"namespace"},
	)

	// queryDuration tracks how long each query operation takes end to end,
	// including view reconstruction.
	queryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clouddriver_query_duration_seconds",
			Help:    "Duration of security group query operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(
		reconstructionFailures,
		cacheEntriesAccepted,
		cacheEntriesRejected,
		queryDuration,
	)
}
