package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/warp/hiring-engine/hiring"
)

var (
	ingestRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hiring",
		Subsystem: "ingest",
		Name:      "rows_total",
		Help:      "CSV rows processed by uploads, broken down by table and outcome.",
	}, []string{"table", "outcome"})

	ingestFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hiring",
		Subsystem: "ingest",
		Name:      "failures_total",
		Help:      "Rejected uploads broken down by table and error kind.",
	}, []string{"table", "kind"})

	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "hiring",
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution for API requests.",
		Buckets: []float64{
			0.001, 0.002, 0.005,
			0.01, 0.02, 0.05,
			0.1, 0.2, 0.5,
			1, 2, 5, 10,
		},
	}, []string{"route", "status"})
)

// tableLabel bounds label cardinality to the known tables.
func tableLabel(name string) string {
	if _, err := hiring.ParseTable(name); err != nil {
		return "unknown"
	}
	return name
}
