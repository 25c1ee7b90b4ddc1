// Package rag provides Prometheus metrics for the retrieval engine.
package rag

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// upsertsTotal counts document upserts. Labels: result.
	upsertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llmtools",
			Subsystem: "rag",
			Name:      "upserts_total",
			Help:      "Total number of document upserts",
		},
		[]string{"result"},
	)

	// chunksUpserted counts chunks written by upserts.
	chunksUpserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "llmtools",
			Subsystem: "rag",
			Name:      "chunks_upserted_total",
			Help:      "Total number of chunks written by upserts",
		},
	)

	// queriesTotal counts similarity queries. Labels: result
	// (success, empty, error).
	queriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llmtools",
			Subsystem: "rag",
			Name:      "queries_total",
			Help:      "Total number of similarity queries",
		},
		[]string{"result"},
	)

	// routerAttachmentsTotal counts per-attachment routing outcomes.
	// Labels: outcome (inlined, retrieved, empty, failed).
	routerAttachmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llmtools",
			Subsystem: "rag",
			Name:      "router_attachments_total",
			Help:      "Total number of attachments processed by the retrieval router",
		},
		[]string{"outcome"},
	)
)
