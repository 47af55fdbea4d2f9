package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// AuditEntriesWritten counts application-side audit writes by action.
	// Trigger-side entries are visible in the table, not in this counter.
	AuditEntriesWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_entries_written_total",
			Help: "Audit entries persisted by the application recorder",
		},
		[]string{"table", "action"},
	)

	PermissionDenials = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "permission_denials_total",
			Help: "Requests refused by the permission engine",
		},
		[]string{"role", "action", "resource"},
	)

	GovernedMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "governed_mutations_total",
			Help: "Committed governed mutations",
		},
		[]string{"table", "action"},
	)

	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current background worker queue depth",
		},
	)
)

// Handler serves /metrics.
var Handler = promhttp.Handler()

func Init() {
	prometheus.MustRegister(AuditEntriesWritten)
	prometheus.MustRegister(PermissionDenials)
	prometheus.MustRegister(GovernedMutations)
	prometheus.MustRegister(WorkerQueueDepth)
}
