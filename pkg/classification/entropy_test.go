package classification

import (
	"math"
	"testing"
)

func TestAnalyzeEntropy(t *testing.T) {
	tests := []struct {
		name           string
		probs          []float64
		wantNormalized float64
		wantLevel      string
	}{
		{
			name:           "one-hot distribution",
			probs:          []float64{1, 0, 0, 0, 0, 0},
			wantNormalized: 0,
			wantLevel:      "very_low",
		},
		{
			name:           "uniform distribution",
			probs:          []float64{1.0 / 6, 1.0 / 6, 1.0 / 6, 1.0 / 6, 1.0 / 6, 1.0 / 6},
			wantNormalized: 1,
			wantLevel:      "very_high",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeEntropy(tt.probs)
			if math.Abs(got.NormalizedEntropy-tt.wantNormalized) > 1e-9 {
				t.Errorf("normalized entropy = %v, want %v", got.NormalizedEntropy, tt.wantNormalized)
			}
			if got.UncertaintyLevel != tt.wantLevel {
				t.Errorf("level = %s, want %s", got.UncertaintyLevel, tt.wantLevel)
			}
			if math.Abs(got.Certainty-(1-got.NormalizedEntropy)) > 1e-9 {
				t.Error("certainty must complement normalized entropy")
			}
		})
	}
}

func TestAnalyzeEntropyDegenerate(t *testing.T) {
	if got := AnalyzeEntropy(nil); got.Entropy != 0 || got.NormalizedEntropy != 0 {
		t.Errorf("empty distribution should be zero entropy, got %+v", got)
	}
	if got := AnalyzeEntropy([]float64{1}); got.NormalizedEntropy != 0 {
		t.Errorf("single-class distribution has no normalized entropy, got %+v", got)
	}
}
