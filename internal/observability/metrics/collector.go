// Package metrics exposes Prometheus instrumentation for the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipeline stage labels.
const (
	StageRefine   = "refine"
	StageRetrieve = "retrieve"
	StageAssemble = "assemble"
	StageGenerate = "generate"
)

// Collector bundles the Prometheus metrics for the service.
type Collector struct {
	registry *prometheus.Registry

	// Pipeline metrics
	StageDuration    *prometheus.HistogramVec
	StageErrors      *prometheus.CounterVec
	RetrievedResults prometheus.Histogram
	Turns            prometheus.Counter

	// Ingestion metrics
	IngestedChunks prometheus.Counter

	// Request metrics
	RequestDuration *prometheus.HistogramVec
}

// NewCollector creates a new metrics collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),

		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rag_stage_duration_seconds",
				Help:    "Duration of each pipeline stage in seconds",
				Buckets: []float64{.005, .025, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"stage"},
		),

		StageErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rag_stage_errors_total",
				Help: "Total pipeline stage failures",
			},
			[]string{"stage"},
		),

		RetrievedResults: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rag_retrieved_results",
				Help:    "Number of chunks returned per retrieval",
				Buckets: []float64{0, 1, 2, 3, 4, 5, 10, 20},
			},
		),

		Turns: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "rag_turns_total",
				Help: "Total completed question answering turns",
			},
		),

		IngestedChunks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ingested_chunks_total",
				Help: "Total chunks written to the vector store",
			},
		),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "endpoint", "status"},
		),
	}

	c.registry.MustRegister(
		c.StageDuration,
		c.StageErrors,
		c.RetrievedResults,
		c.Turns,
		c.IngestedChunks,
		c.RequestDuration,
	)

	return c
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
