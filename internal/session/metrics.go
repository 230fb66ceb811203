package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// rebuildDuration measures full graph rebuilds.
	rebuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "specgraph",
		Subsystem: "session",
		Name:      "rebuild_duration_seconds",
		Help:      "Full graph rebuild latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})

	// graphSize tracks the canonical graph size after the last rebuild.
	// Labels: part (nodes, edges)
	graphSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "specgraph",
		Subsystem: "session",
		Name:      "graph_size",
		Help:      "Node and edge count of the canonical graph",
	}, []string{"part"})

	// editsTotal counts edit requests.
	// Labels: kind (edge, position), outcome (applied, rejected, save_failed)
	editsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "specgraph",
		Subsystem: "session",
		Name:      "edits_total",
		Help:      "Edit requests by kind and outcome",
	}, []string{"kind", "outcome"})

	// projectionsTotal counts view projections.
	// Labels: mode (summary, named)
	projectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "specgraph",
		Subsystem: "session",
		Name:      "projections_total",
		Help:      "View projections served",
	}, []string{"mode"})
)
