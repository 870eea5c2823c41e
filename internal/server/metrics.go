package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type telemetry struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	compute  *prometheus.HistogramVec
	cacheHit prometheus.Counter
}

func newTelemetry() *telemetry {
	t := &telemetry{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fairparity_requests_total",
			Help: "Parity requests by metric and HTTP status.",
		}, []string{"metric", "status"}),
		compute: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fairparity_compute_seconds",
			Help:    "Time spent computing parity results.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"metric"}),
		cacheHit: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fairparity_cache_hits_total",
			Help: "Requests answered from the result cache.",
		}),
	}
	t.registry.MustRegister(
		t.requests,
		t.compute,
		t.cacheHit,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return t
}
