// Package metrics exposes Prometheus collectors for the classification client
// and the prompt compiler. All collectors register with the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LLMRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tastelever_llm_requests_total",
		Help: "Total requests sent to the generation provider",
	}, []string{"provider", "status"})

	LLMRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tastelever_llm_request_duration_seconds",
		Help:    "Generation request duration",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"provider"})

	Classifications = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tastelever_classifications_total",
		Help: "Data points classified by the executor",
	})

	// ConfidenceFallbacks counts predictions whose confidence defaulted to 1
	// because no matching token log-probability was available.
	ConfidenceFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tastelever_confidence_fallbacks_total",
		Help: "Predictions whose confidence could not be extracted",
	})

	Explanations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tastelever_explanations_total",
		Help: "Few-shot explanations synthesized",
	})

	Decisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tastelever_compile_decisions_total",
		Help: "Regression guard outcomes",
	}, []string{"outcome"})

	TestLoss = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tastelever_test_loss",
		Help: "Average confidence-weighted test loss of the last evaluated bundles",
	}, []string{"bundle"})
)

// Regression guard outcomes.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)

// Bundle labels for TestLoss.
const (
	BundlePrior     = "prior"
	BundleCandidate = "candidate"
)
