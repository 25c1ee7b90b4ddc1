// Package vectorstore provides Prometheus metrics for store operations.
package vectorstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OperationsTotal counts store operations.
	// Labels: operation (add, query, delete, ensure_collection,
	// delete_collection), result (success, error).
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llmtools",
			Subsystem: "vectorstore",
			Name:      "operations_total",
			Help:      "Total number of vector store operations",
		},
		[]string{"operation", "result"},
	)

	// OperationDuration tracks how long store operations take.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "llmtools",
			Subsystem: "vectorstore",
			Name:      "operation_duration_seconds",
			Help:      "Duration of vector store operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// DocumentsWritten counts documents written across all collections.
	DocumentsWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "llmtools",
			Subsystem: "vectorstore",
			Name:      "documents_written_total",
			Help:      "Total number of documents written to the store",
		},
	)
)

// observeOp records the outcome and duration of one store operation.
func observeOp(operation string, seconds float64, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	OperationsTotal.WithLabelValues(operation, result).Inc()
	OperationDuration.WithLabelValues(operation).Observe(seconds)
}
