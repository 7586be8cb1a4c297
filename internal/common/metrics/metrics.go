// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PlanGenerations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_generation_total",
			Help: "Plan generation attempts by backend and outcome",
		},
		[]string{"backend", "outcome"},
	)

	PlanGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "plan_generation_duration_seconds",
			Help:    "Duration of plan generation calls in seconds",
			Buckets: []float64{1, 5, 10, 20, 40, 60, 90, 120},
		},
		[]string{"backend"},
	)

	Exports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_export_total",
			Help: "Document exports by format and outcome",
		},
		[]string{"format", "outcome"},
	)

	LeadNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_notifications_total",
			Help: "Lead notification deliveries by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)

	LeadNotificationsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lead_notifications_in_flight",
			Help: "Detached lead notifications not yet finished",
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status class",
		},
		[]string{"route", "status"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)
