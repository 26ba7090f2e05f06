package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels completed job runs and assignments.
	OutcomeSuccess = "success"
	// OutcomeError labels failed job runs and assignments.
	OutcomeError = "error"
	// OutcomeSkipped labels job runs skipped by the re-entrancy guard.
	OutcomeSkipped = "skipped"
	// OutcomeNoEligible labels assignment attempts with no eligible technician.
	OutcomeNoEligible = "no_eligible"
)

var (
	jobRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "helpdesk_intel",
			Name:      "job_runs_total",
			Help:      "Background job executions, partitioned by job and outcome.",
		},
		[]string{"job", "outcome"},
	)

	jobDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "helpdesk_intel",
			Name:      "job_duration_seconds",
			Help:      "Background job run latency in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"job"},
	)

	assignmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "helpdesk_intel",
			Name:      "assignments_total",
			Help:      "Automatic assignment attempts, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	duplicateChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "helpdesk_intel",
			Name:      "duplicate_checks_total",
			Help:      "Duplicate detection requests, partitioned by verdict.",
		},
		[]string{"verdict"},
	)

	slaAlertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "helpdesk_intel",
			Name:      "sla_alerts_total",
			Help:      "SLA alerts emitted, partitioned by kind.",
		},
		[]string{"kind"},
	)
)

// Register attaches all service collectors to the supplied registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		jobRunsTotal,
		jobDurationSeconds,
		assignmentsTotal,
		duplicateChecksTotal,
		slaAlertsTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveJobRun records one background job execution.
func ObserveJobRun(job string, duration time.Duration, outcome string) {
	jobRunsTotal.WithLabelValues(job, outcome).Inc()
	if outcome == OutcomeSkipped {
		return
	}
	if duration < 0 {
		duration = 0
	}
	jobDurationSeconds.WithLabelValues(job).Observe(duration.Seconds())
}

// RecordAssignment counts an assignment attempt outcome.
func RecordAssignment(outcome string) {
	assignmentsTotal.WithLabelValues(outcome).Inc()
}

// RecordDuplicateCheck counts a duplicate detection verdict.
func RecordDuplicateCheck(duplicate bool) {
	verdict := "unique"
	if duplicate {
		verdict = "duplicate"
	}
	duplicateChecksTotal.WithLabelValues(verdict).Inc()
}

// RecordSLAAlert counts an emitted SLA alert.
func RecordSLAAlert(kind string) {
	slaAlertsTotal.WithLabelValues(kind).Inc()
}
