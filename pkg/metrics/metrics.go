package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PredictionsTotal counts banded predictions by label and status. For
	// uncertain predictions the label dimension is "suppressed".
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsguard_predictions_total",
			Help: "Number of predictions by label and status",
		},
		[]string{"label", "status"},
	)

	// InvalidDistributionsTotal counts rejected probability vectors.
	InvalidDistributionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsguard_invalid_distributions_total",
			Help: "Number of rejected malformed probability distributions",
		},
	)

	// InferenceDuration observes the full inference pipeline latency.
	InferenceDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newsguard_inference_duration_seconds",
			Help:    "Full inference pipeline latency",
			Buckets: []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	// ModelCallDuration observes the external model round-trip latency.
	ModelCallDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newsguard_model_call_duration_seconds",
			Help:    "External model server round-trip latency",
			Buckets: []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	// SuspiciousPhrasesTotal counts matched spans by type.
	SuspiciousPhrasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsguard_suspicious_phrases_total",
			Help: "Number of suspicious phrase matches by type",
		},
		[]string{"type"},
	)

	// EDAReasonsPerPrediction observes how many EDA reasons each reportable
	// prediction produced.
	EDAReasonsPerPrediction = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newsguard_eda_reasons_per_prediction",
			Help:    "EDA reason count per reportable prediction",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 8},
		},
	)

	// PredictionEntropy observes the normalized entropy of model
	// distributions; a drift upwards signals a degrading model.
	PredictionEntropy = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newsguard_prediction_normalized_entropy",
			Help:    "Normalized Shannon entropy of prediction distributions",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	// CacheLookupsTotal counts result cache lookups by outcome.
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsguard_cache_lookups_total",
			Help: "Result cache lookups by outcome (hit/miss)",
		},
		[]string{"outcome"},
	)

	// FeedbackTotal counts stored user feedback by score.
	FeedbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsguard_feedback_total",
			Help: "Stored user feedback entries by score",
		},
		[]string{"score"},
	)
)

// RecordPrediction records one banded prediction.
func RecordPrediction(label, status string, durationSeconds float64) {
	if label == "" {
		label = "suppressed"
	}
	PredictionsTotal.WithLabelValues(label, status).Inc()
	InferenceDuration.Observe(durationSeconds)
}

// RecordCacheLookup records a result cache hit or miss.
func RecordCacheLookup(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	CacheLookupsTotal.WithLabelValues(outcome).Inc()
}

// RecordFeedback records one stored feedback entry.
func RecordFeedback(score int) {
	FeedbackTotal.WithLabelValues(fmt.Sprintf("%d", score)).Inc()
}
