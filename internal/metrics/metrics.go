// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters fed by the workflows.
type Metrics struct {
	TransfersStarted  *prometheus.CounterVec
	ListingFailures   prometheus.Counter
	ReconcilePasses   prometheus.Counter
	BatchesReconciled *prometheus.CounterVec
}

// New registers the service metrics on reg under the sftpflow_ prefix.
func New(reg prometheus.Registerer) *Metrics {
	reg = prometheus.WrapRegistererWithPrefix("sftpflow_", reg)
	return &Metrics{
		TransfersStarted: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "transfers_started_total",
			Help: "Connector transfers started, by kind.",
		}, []string{"kind"}),
		ListingFailures: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "listing_failures_total",
			Help: "Remote directory listings that failed.",
		}),
		ReconcilePasses: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "reconcile_passes_total",
			Help: "Status reconciliation passes executed.",
		}),
		BatchesReconciled: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "batches_reconciled_total",
			Help: "Batches driven to a terminal status, by outcome.",
		}, []string{"status"}),
	}
}
