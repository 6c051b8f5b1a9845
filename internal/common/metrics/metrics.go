// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "job_applier"

// Worker metrics, labelled by Zeebe task type.
var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_jobs_completed_total",
			Help:      "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_jobs_failed_total",
			Help:      "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "worker_job_duration_seconds",
			Help:      "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "worker_jobs_active",
			Help:      "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

// Domain metrics.
var (
	// PostingsIngested counts ingestion outcomes: created, duplicate, cached, rejected, error.
	PostingsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "postings_ingested_total",
			Help:      "Job postings handed to ingestion, by outcome",
		},
		[]string{"result"},
	)

	ApplicationTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "application_transitions_total",
			Help:      "Application status transitions attempted, by outcome",
		},
		[]string{"from", "to", "result"},
	)

	// Recommendations counts selection outcomes: matched, preference, fallback.
	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "template_recommendations_total",
			Help:      "Template selections, by outcome",
		},
		[]string{"outcome"},
	)

	StagingRecordsPrepared = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "staging_records_prepared_total",
			Help:      "Customization staging records prepared, by template type and mode",
		},
		[]string{"template_type", "mode"},
	)

	InterventionNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intervention_notifications_total",
			Help:      "Intervention notifications sent, by channel and outcome",
		},
		[]string{"channel", "result"},
	)
)
