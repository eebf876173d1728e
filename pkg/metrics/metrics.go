package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Transaction metrics
	CommitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tablestore_commits_total",
			Help: "Total number of commit attempts by result",
		},
		[]string{"result"},
	)

	TransactionsOpened = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tablestore_transactions_opened_total",
			Help: "Total number of transactions opened",
		},
	)

	LogEntriesReplayed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tablestore_log_entries_replayed_total",
			Help: "Total number of log entries decoded during snapshot replay",
		},
	)

	// Write path metrics
	DataObjectsFlushed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tablestore_dataobjects_flushed_total",
			Help: "Total number of data objects written to the store",
		},
	)

	RowsWritten = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tablestore_rows_written_total",
			Help: "Total number of rows flushed into data objects",
		},
	)

	// Read path metrics
	ScansStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tablestore_scans_started_total",
			Help: "Total number of scan cursors opened",
		},
	)
)

// Commit result label values.
const (
	ResultOK       = "ok"
	ResultConflict = "conflict"
	ResultError    = "error"
)

// Register registers all collectors with the given registerer.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		CommitsTotal,
		TransactionsOpened,
		LogEntriesReplayed,
		DataObjectsFlushed,
		RowsWritten,
		ScansStarted,
	)
}

// Handler returns an HTTP handler exposing the default registry, for callers
// that registered against prometheus.DefaultRegisterer.
func Handler() http.Handler {
	return promhttp.Handler()
}
