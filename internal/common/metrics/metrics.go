// internal/common/metrics/metrics.go
package metrics

import (
	"strconv"

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
		[]string{"task_type", "outcome"},
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

	DocumentsExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_documents_extracted_total",
			Help: "Documents run through field extraction, by type and completeness",
		},
		[]string{"document_type", "complete"},
	)

	ExtractionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_extraction_failures_total",
			Help: "Extraction backend failures by document type",
		},
		[]string{"document_type"},
	)

	EligibilityDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_eligibility_decisions_total",
			Help: "Eligibility decisions by outcome",
		},
		[]string{"decision"},
	)

	ComplianceViolations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_compliance_violations_total",
			Help: "Compliance violations raised by rule and severity",
		},
		[]string{"rule_id", "severity"},
	)

	FinancialFetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_financial_fetch_failures_total",
			Help: "Failed financial data service calls by source",
		},
		[]string{"source"},
	)
)

// RecordExtraction counts one extracted document.
func RecordExtraction(documentType string, complete bool, backendFailed bool) {
	DocumentsExtracted.WithLabelValues(documentType, strconv.FormatBool(complete)).Inc()
	if backendFailed {
		ExtractionFailures.WithLabelValues(documentType).Inc()
	}
}
