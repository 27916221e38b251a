package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the server's Prometheus instruments on a dedicated registry
// so tests can construct isolated instances.
type Metrics struct {
	Registry            *prometheus.Registry
	QueriesTotal        *prometheus.CounterVec
	ToolDispatchesTotal prometheus.Counter
	QueryDuration       prometheus.Histogram
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		QueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "courserag",
			Name:      "queries_total",
			Help:      "Queries handled, by outcome.",
		}, []string{"status"}),
		ToolDispatchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "courserag",
			Name:      "tool_dispatches_total",
			Help:      "Tool invocations routed across all queries.",
		}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "courserag",
			Name:      "query_duration_seconds",
			Help:      "End-to-end query latency including tool rounds.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
	}
	reg.MustRegister(m.QueriesTotal, m.ToolDispatchesTotal, m.QueryDuration)
	reg.MustRegister(collectors.NewGoCollector())
	return m
}
