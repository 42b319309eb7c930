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

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	ReportsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reports_generated_total",
			Help: "Health department reports assembled, by jurisdiction and tier",
		},
		[]string{"jurisdiction", "tier"},
	)

	ReportSectionsGated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_sections_gated_total",
			Help: "Requested report sections dropped by free-tier gating",
		},
		[]string{"section"},
	)

	MissingDocumentAlerts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "missing_document_alerts_total",
			Help: "Missing-document alerts raised, by severity",
		},
		[]string{"severity"},
	)
)

// TierLabel is the tier label value used on report metrics.
func TierLabel(isPaid bool) string {
	if isPaid {
		return "paid"
	}
	return "free"
}
