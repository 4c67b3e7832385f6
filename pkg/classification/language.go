package classification

import (
	"github.com/abadojack/whatlanggo"

	"github.com/vietfact/newsguard/pkg/observability/logging"
)

// LanguageResult is the detected language of an input text.
type LanguageResult struct {
	Code       string  // ISO 639-1 code: "vi", "en", ...
	Confidence float64 // 0.0-1.0
	Reliable   bool
}

// DetectLanguage detects the input language. The classifier is trained on
// Vietnamese text, so non-Vietnamese input is flagged to the caller (and
// logged) but not rejected.
func DetectLanguage(text string) LanguageResult {
	if text == "" {
		return LanguageResult{Code: "", Confidence: 0}
	}

	info := whatlanggo.Detect(text)
	confidence := info.Confidence
	if confidence > 1.0 {
		confidence = 1.0
	}
	if confidence < 0.0 {
		confidence = 0.0
	}

	code := info.Lang.Iso6391()
	if code != "vi" {
		logging.Warnf("non-Vietnamese input detected: lang=%s confidence=%.2f reliable=%v",
			info.Lang.String(), info.Confidence, info.IsReliable())
	}

	return LanguageResult{
		Code:       code,
		Confidence: confidence,
		Reliable:   info.IsReliable(),
	}
}
