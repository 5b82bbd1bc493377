package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval pipeline Prometheus metrics.
var (
	RetrievalQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragctx",
			Name:      "retrieval_queries_total",
			Help:      "Total number of similarity queries issued",
		},
		[]string{"status"}, // "success" / "error"
	)

	RetrievalMatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragctx",
			Name:      "retrieval_matches_total",
			Help:      "Matches returned by the index, by threshold disposition",
		},
		[]string{"disposition"}, // "kept" / "below_threshold"
	)

	RetrievalExtractionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragctx",
			Name:      "retrieval_extractions_total",
			Help:      "Passage extractions, by path taken",
		},
		[]string{"path"}, // "node_content" / "flat_text"
	)
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers retrieval Prometheus metrics. Must be called once from main.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(RetrievalQueriesTotal)
	prometheus.MustRegister(RetrievalMatchesTotal)
	prometheus.MustRegister(RetrievalExtractionsTotal)
	retrievalMetricsRegistered = true
}
