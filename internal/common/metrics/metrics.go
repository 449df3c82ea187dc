// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of pipeline stage jobs completed",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of pipeline stage jobs failed",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per stage worker",
		},
		[]string{"task_type"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "culturis_stage_duration_seconds",
			Help:    "Duration of pipeline stage execution in seconds",
			Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"stage", "outcome"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "culturis_http_requests_total",
			Help: "Inbound API requests by route and status",
		},
		[]string{"route", "method", "status"},
	)

	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "culturis_upstream_requests_total",
			Help: "Outbound requests by upstream service and status",
		},
		[]string{"upstream", "status"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "culturis_cache_lookups_total",
			Help: "Recommendation response cache lookups by result",
		},
		[]string{"result"},
	)

	GroundingSnippets = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "culturis_grounding_snippets",
			Help:    "Number of snippets retrieved per corpus",
			Buckets: []float64{0, 1, 2, 4, 8, 16},
		},
		[]string{"corpus"},
	)
)
