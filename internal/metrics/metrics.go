// Package metrics holds the Prometheus collectors for persona generation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "persona"

// Attempt outcomes.
const (
	OutcomeValid            = "valid"
	OutcomeParseError       = "parse_error"
	OutcomeSchemaIncomplete = "schema_incomplete"
	OutcomeTransportError   = "transport_error"
	OutcomeUnexpectedError  = "unexpected_error"
	OutcomeCollision        = "collision"
	OutcomeRejected         = "rejected"
)

var (
	// GenerationAttempts counts each call to the generative service by kind and outcome.
	GenerationAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "generation_attempts_total",
		Help:      "Generative service attempts by kind and outcome.",
	}, []string{"kind", "outcome"})

	// DocumentResults counts finished document generations by status.
	DocumentResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "document_results_total",
		Help:      "Finished document generations by result status.",
	}, []string{"status"})

	// NameResults counts finished name generations by source.
	NameResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "name_results_total",
		Help:      "Finished name generations by source (generated or fallback).",
	}, []string{"source"})

	// Restatements counts restatement results.
	Restatements = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "restatements_total",
		Help:      "Persona restatements by outcome (restated, fallback, unchanged).",
	}, []string{"outcome"})

	// NameCacheEntries tracks the size of each deduplication set.
	NameCacheEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "name_cache_entries",
		Help:      "Entries in the name deduplication cache.",
	}, []string{"set"})

	// DocumentDuration observes end-to-end document generation latency.
	DocumentDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "document_duration_seconds",
		Help:      "Document generation latency across all attempts.",
		Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
	})
)
