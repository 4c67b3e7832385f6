package classification

import (
	"math"

	"github.com/vietfact/newsguard/pkg/eda"
	"github.com/vietfact/newsguard/pkg/features"
)

// ExplanationComposer aggregates the phrase matcher and EDA store into a
// single justification bundle. Pure aggregation; it runs only for reportable
// predictions.
type ExplanationComposer struct {
	store             *eda.Store
	matcher           *PhraseMatcher
	maxExplainPhrases int
}

// NewExplanationComposer creates a composer over the given store and matcher.
func NewExplanationComposer(store *eda.Store, matcher *PhraseMatcher, maxExplainPhrases int) *ExplanationComposer {
	return &ExplanationComposer{
		store:             store,
		matcher:           matcher,
		maxExplainPhrases: maxExplainPhrases,
	}
}

// Compose builds the explanation for a decided label. The EDA reasons are
// concatenated in a fixed presentation order: numeric, binary, text length.
// The publish-time comparison the store also offers is deliberately not part
// of this path; see Store.CheckPublishTime.
func (e *ExplanationComposer) Compose(label, text string, bundle features.Bundle) Explanation {
	reasons := e.store.CompareNumeric(label, bundle.Numeric)
	reasons = append(reasons, e.store.CompareBinary(label, bundle.Binary)...)
	reasons = append(reasons, e.store.CheckTextLength(label, bundle.TextLength)...)

	// Crude saturation heuristic, not a calibrated probability.
	confidence := float64(len(reasons)) / float64(e.maxExplainPhrases)
	if confidence > 1.0 {
		confidence = 1.0
	}

	return Explanation{
		SuspiciousPhrases: e.matcher.Match(text, label),
		EDAAnalysis: &EDAAnalysis{
			EDAReasons:    reasons,
			NumMatches:    len(reasons),
			LabelPrior:    math.Round(e.store.Prior(label)*10000) / 10000,
			EDAConfidence: confidence,
		},
	}
}
