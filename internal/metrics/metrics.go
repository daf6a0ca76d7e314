// Package metrics holds the Prometheus collectors for ledger activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var DocumentsPosted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tally",
	Subsystem: "ledger",
	Name:      "documents_posted_total",
	Help:      "Total documents posted, by record type.",
}, []string{"type"})

var PostingsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tally",
	Subsystem: "ledger",
	Name:      "postings_rejected_total",
	Help:      "Total postings rejected by validation, by error kind.",
}, []string{"kind"})

var OrphansRemoved = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tally",
	Subsystem: "ledger",
	Name:      "orphans_removed_total",
	Help:      "Total orphaned child records removed by repair.",
})

func ObservePosting(recordType string) {
	DocumentsPosted.WithLabelValues(recordType).Inc()
}

// ObserveRejection counts a validation failure. Errors without a kind are
// not validation failures and are ignored.
func ObserveRejection(kind string) {
	if kind == "" {
		return
	}

	PostingsRejected.WithLabelValues(kind).Inc()
}

func ObserveOrphansRemoved(n int) {
	if n <= 0 {
		return
	}

	OrphansRemoved.Add(float64(n))
}
