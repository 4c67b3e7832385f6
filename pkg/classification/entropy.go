package classification

import "math"

// EntropyResult contains entropy-based diagnostics for a probability
// distribution. Used for logging and metrics only; it never influences the
// banding decision.
type EntropyResult struct {
	Entropy           float64 // Shannon entropy of the distribution
	NormalizedEntropy float64 // Entropy normalized to [0,1]
	Certainty         float64 // 1 - normalized entropy
	UncertaintyLevel  string  // very_low .. very_high
}

// AnalyzeEntropy computes Shannon entropy diagnostics for a distribution.
func AnalyzeEntropy(probs []float64) EntropyResult {
	entropy := 0.0
	for _, p := range probs {
		if p > 0 {
			entropy -= p * math.Log2(p)
		}
	}

	normalized := 0.0
	if len(probs) > 1 {
		if maxEntropy := math.Log2(float64(len(probs))); maxEntropy > 0 {
			normalized = entropy / maxEntropy
		}
	}

	var level string
	switch {
	case normalized >= 0.8:
		level = "very_high"
	case normalized >= 0.6:
		level = "high"
	case normalized >= 0.4:
		level = "medium"
	case normalized >= 0.2:
		level = "low"
	default:
		level = "very_low"
	}

	return EntropyResult{
		Entropy:           entropy,
		NormalizedEntropy: normalized,
		Certainty:         1.0 - normalized,
		UncertaintyLevel:  level,
	}
}
