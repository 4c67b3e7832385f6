package classification

// Status is the reportability outcome of a single inference call.
// "uncertain" is a first-class outcome, not an error: the label is suppressed
// and downstream consumers must not treat the result as a decision.
type Status string

const (
	StatusPredicted            Status = "predicted"
	StatusPredictedWithWarning Status = "predicted_with_warning"
	StatusUncertain            Status = "uncertain"
)

// Confidence bands derived from the top predicted probability.
const (
	LevelHigh   = "high"
	LevelMedium = "medium"
	LevelLow    = "low"
)

// TopPrediction is one entry of the top-K label ranking.
type TopPrediction struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// Prediction is the banded model decision. Label is empty when the status is
// uncertain.
type Prediction struct {
	Label           string          `json:"label,omitempty"`
	Confidence      float64         `json:"confidence"`
	ConfidenceLevel string          `json:"confidence_level"`
	TopPredictions  []TopPrediction `json:"top_predictions"`
}

// SuspiciousPhrase is a matched span of the input text.
type SuspiciousPhrase struct {
	Phrase   string `json:"phrase"`
	Type     string `json:"type"`     // keyword | url | email | phone
	Strength string `json:"strength"` // medium | weak
	Note     string `json:"note"`
}

// EDAAnalysis is the statistical explanation bundle. The reasons are
// heuristic distributional comparisons for human review, not causal
// attributions.
type EDAAnalysis struct {
	EDAReasons    []string `json:"eda_reasons"`
	NumMatches    int      `json:"num_matches"`
	LabelPrior    float64  `json:"label_prior"`
	EDAConfidence float64  `json:"eda_confidence"`
}

// Explanation bundles phrase evidence and EDA analysis. Empty when the
// prediction is uncertain or explanation is disabled.
type Explanation struct {
	SuspiciousPhrases []SuspiciousPhrase `json:"suspicious_phrases,omitempty"`
	EDAAnalysis       *EDAAnalysis       `json:"eda_analysis,omitempty"`
}

// ModelOutput is the full result of one inference call.
type ModelOutput struct {
	Status      Status      `json:"status"`
	Prediction  Prediction  `json:"prediction"`
	Explanation Explanation `json:"explanation"`
	// Language is the detected ISO 639-1 language code of the input text.
	Language string `json:"language,omitempty"`
}
