// Package metrics holds the Prometheus collectors of the bridge.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var Transactions = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "searchbridge",
	Subsystem: "txn",
	Name:      "transactions_total",
	Help:      "Catalog transactions by outcome.",
}, []string{"outcome"})

var DeferredActions = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "searchbridge",
	Subsystem: "txn",
	Name:      "deferred_actions_total",
	Help:      "Deferred actions executed at a transaction boundary.",
}, []string{"event", "result"})

var DropRegistrations = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "searchbridge",
	Subsystem: "reconcile",
	Name:      "registrations_total",
	Help:      "Remote index deletes registered, by drop scope.",
}, []string{"scope"})

var RemoteDeletes = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "searchbridge",
	Subsystem: "remote",
	Name:      "deletes_total",
	Help:      "Remote index delete requests by result.",
}, []string{"result"})

var RemoteDeleteDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
	Namespace: "searchbridge",
	Subsystem: "remote",
	Name:      "delete_duration_seconds",
	Buckets:   prometheus.DefBuckets,
})

var TermQueries = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "searchbridge",
	Subsystem: "dsl",
	Name:      "term_queries_total",
	Help:      "Term predicates compiled, by value kind.",
}, []string{"kind"})

// Registry holds every collector above.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		Transactions,
		DeferredActions,
		DropRegistrations,
		RemoteDeletes,
		RemoteDeleteDuration,
		TermQueries,
	)
}

// Handler serves Registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
