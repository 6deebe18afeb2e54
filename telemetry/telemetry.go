// Package telemetry provides optional Prometheus metrics for the analysis
// client. Metrics are injected into the client with WithMetrics; a nil
// *Metrics disables all recording.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors recorded by the stream
// orchestrator.
type Metrics struct {
	// Stream lifecycle
	StreamsStarted   *prometheus.CounterVec
	StreamsCompleted *prometheus.CounterVec
	StreamsFailed    *prometheus.CounterVec

	// Token accounting, labeled by provider and token class
	// (input, visible_output, reasoning, cached)
	Tokens *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics. A nil registry uses the
// default registerer.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		StreamsStarted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llmanalysis_streams_started_total",
				Help: "Analysis streams opened, by provider",
			},
			[]string{"provider"},
		),
		StreamsCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llmanalysis_streams_completed_total",
				Help: "Analysis streams that produced a structured payload",
			},
			[]string{"provider"},
		),
		StreamsFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llmanalysis_streams_failed_total",
				Help: "Analysis streams that ended in an error",
			},
			[]string{"provider"},
		),
		Tokens: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llmanalysis_tokens_total",
				Help: "Normalized token counts, by provider and class",
			},
			[]string{"provider", "class"},
		),
	}
}

// RecordStart records one opened stream.
func (m *Metrics) RecordStart(provider string) {
	if m == nil {
		return
	}
	m.StreamsStarted.WithLabelValues(provider).Inc()
}

// RecordCompleted records one successful stream.
func (m *Metrics) RecordCompleted(provider string) {
	if m == nil {
		return
	}
	m.StreamsCompleted.WithLabelValues(provider).Inc()
}

// RecordFailed records one failed stream.
func (m *Metrics) RecordFailed(provider string) {
	if m == nil {
		return
	}
	m.StreamsFailed.WithLabelValues(provider).Inc()
}

// RecordTokens records a normalized usage breakdown.
func (m *Metrics) RecordTokens(provider string, input, visibleOutput, reasoning, cached int) {
	if m == nil {
		return
	}
	m.Tokens.WithLabelValues(provider, "input").Add(float64(input))
	m.Tokens.WithLabelValues(provider, "visible_output").Add(float64(visibleOutput))
	m.Tokens.WithLabelValues(provider, "reasoning").Add(float64(reasoning))
	m.Tokens.WithLabelValues(provider, "cached").Add(float64(cached))
}
