package classification

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/vietfact/newsguard/pkg/config"
	"github.com/vietfact/newsguard/pkg/labels"
)

// ErrInvalidDistribution marks a probability vector that does not match the
// label count or is not a valid probability simplex. Callers must reject the
// request rather than renormalize; silent correction would mask upstream
// model bugs.
var ErrInvalidDistribution = errors.New("invalid probability distribution")

// distributionSumTolerance is the floating tolerance for the simplex sum
// check. Softmax output sums to 1 well within this bound.
const distributionSumTolerance = 1e-3

// ConfidenceClassifier buckets a raw probability distribution into a
// confidence band and decides whether the result is reportable. Pure over
// its inputs; safe for concurrent use.
type ConfidenceClassifier struct {
	registry *labels.Registry
	high     float64
	medium   float64
	topK     int
}

// NewConfidenceClassifier creates a classifier bound to the given registry
// and inference policy.
func NewConfidenceClassifier(registry *labels.Registry, policy config.InferenceConfig) *ConfidenceClassifier {
	return &ConfidenceClassifier{
		registry: registry,
		high:     policy.ConfidenceHigh,
		medium:   policy.ConfidenceMedium,
		topK:     policy.ReturnTopK,
	}
}

// Classify selects the arg-max label, bands it, and ranks the top-K labels.
// The returned Prediction has an empty Label when the status is uncertain.
func (c *ConfidenceClassifier) Classify(probs []float64) (Status, Prediction, error) {
	if err := c.validate(probs); err != nil {
		return "", Prediction{}, err
	}

	ranked := make([]TopPrediction, len(probs))
	for i, p := range probs {
		label, _ := c.registry.LabelFromIndex(i)
		ranked[i] = TopPrediction{Label: label, Probability: p}
	}
	// Stable sort keeps original label-id order for equal probabilities.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Probability > ranked[j].Probability
	})

	k := c.topK
	if k > len(ranked) {
		k = len(ranked)
	}
	top := ranked[:k]

	best := ranked[0]

	var status Status
	var level string
	switch {
	case best.Probability >= c.high:
		status, level = StatusPredicted, LevelHigh
	case best.Probability >= c.medium:
		status, level = StatusPredictedWithWarning, LevelMedium
	default:
		status, level = StatusUncertain, LevelLow
	}

	pred := Prediction{
		Confidence:      best.Probability,
		ConfidenceLevel: level,
		TopPredictions:  top,
	}
	if status != StatusUncertain {
		pred.Label = best.Label
	}
	return status, pred, nil
}

func (c *ConfidenceClassifier) validate(probs []float64) error {
	if len(probs) != c.registry.Count() {
		return fmt.Errorf("%w: got %d probabilities for %d labels",
			ErrInvalidDistribution, len(probs), c.registry.Count())
	}
	sum := 0.0
	for i, p := range probs {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return fmt.Errorf("%w: probability %v at index %d outside [0,1]",
				ErrInvalidDistribution, p, i)
		}
		sum += p
	}
	if math.Abs(sum-1.0) > distributionSumTolerance {
		return fmt.Errorf("%w: probabilities sum to %v", ErrInvalidDistribution, sum)
	}
	return nil
}
