package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docstore", Name: "operations_total", Help: "Number of document store operations by operation and backend."},
		[]string{"op", "backend"},
	)
	OperationErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docstore", Name: "operation_errors_total", Help: "Number of failed document store operations by operation and backend."},
		[]string{"op", "backend"},
	)
	SearchResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "docstore", Name: "search_results", Help: "Number of documents returned per search.", Buckets: prometheus.ExponentialBuckets(1, 4, 6)},
		[]string{"backend"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(Operations)
	reg.MustRegister(OperationErrors)
	reg.MustRegister(SearchResults)
}
