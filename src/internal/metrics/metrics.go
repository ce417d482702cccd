// Package metrics exposes Prometheus collectors for the ledger core.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transactionsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mani_banking",
			Name:      "transactions_created_total",
			Help:      "Pending transactions created, by type",
		},
		[]string{"type"},
	)

	transactionsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mani_banking",
			Name:      "transactions_resolved_total",
			Help:      "Approval workflow outcomes, by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	postingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mani_banking",
			Name:      "ledger_posting_duration_seconds",
			Help:      "Latency of atomic balance postings",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

func TransactionCreated(transactionType string) {
	transactionsCreated.WithLabelValues(transactionType).Inc()
}

// TransactionResolved records an approval workflow outcome: completed,
// rejected, insufficient_funds, conflict or error.
func TransactionResolved(transactionType, outcome string) {
	transactionsResolved.WithLabelValues(transactionType, outcome).Inc()
}

func ObservePosting(start time.Time) {
	postingDuration.Observe(time.Since(start).Seconds())
}
