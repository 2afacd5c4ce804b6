package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "archive",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "archive",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.3, 0.5, 1, 2, 5},
	}, []string{"method", "route"})

	IngestItemsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "archive",
		Name:      "ingest_items_total",
		Help:      "Ingested items by media kind and result status.",
	}, []string{"kind", "status"})

	MergeOperationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "archive",
		Name:      "merge_operations_total",
		Help:      "Source merges by media kind and outcome (created, appended, replaced).",
	}, []string{"kind", "outcome"})

	MergeConflictsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "archive",
		Name:      "merge_conflicts_total",
		Help:      "Conditional update conflicts seen by the merge engine.",
	}, []string{"kind"})

	ProviderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "archive",
		Name:      "provider_requests_total",
		Help:      "Metadata provider requests by operation and result status.",
	}, []string{"operation", "status"})

	ProviderRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "archive",
		Name:      "provider_request_duration_seconds",
		Help:      "Metadata provider request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10},
	}, []string{"operation"})

	ProviderInflight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "archive",
		Name:      "provider_inflight_requests",
		Help:      "Metadata provider requests currently holding a concurrency slot.",
	})

	CacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "archive",
		Name:      "cache_hits_total",
		Help:      "Cache hits by layer.",
	}, []string{"layer"})

	CacheMissesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "archive",
		Name:      "cache_misses_total",
		Help:      "Cache misses by layer.",
	}, []string{"layer"})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		IngestItemsTotal,
		MergeOperationsTotal,
		MergeConflictsTotal,
		ProviderRequestsTotal,
		ProviderRequestDuration,
		ProviderInflight,
		CacheHitsTotal,
		CacheMissesTotal,
	)
}
