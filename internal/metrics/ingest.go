package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ingest pipeline metrics.
var (
	IngestRowsIndexed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "qadex",
			Name:      "ingest_rows_indexed_total",
			Help:      "Total questions successfully embedded and indexed",
		},
	)

	IngestRowsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qadex",
			Name:      "ingest_rows_failed_total",
			Help:      "Total questions that failed to index",
		},
		[]string{"reason"},
	)

	IngestBatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "qadex",
			Name:      "ingest_batch_duration_seconds",
			Help:      "Embed+index duration per batch",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)

var ingestMetricsRegistered bool

// RegisterIngestMetrics registers Prometheus ingest metrics. Must be called once from main.
func RegisterIngestMetrics() {
	if ingestMetricsRegistered {
		return
	}
	prometheus.MustRegister(IngestRowsIndexed)
	prometheus.MustRegister(IngestRowsFailed)
	prometheus.MustRegister(IngestBatchDuration)
	ingestMetricsRegistered = true
}
