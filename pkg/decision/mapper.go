package decision

import (
	"fmt"

	"github.com/vietfact/newsguard/pkg/classification"
	"github.com/vietfact/newsguard/pkg/config"
	"github.com/vietfact/newsguard/pkg/labels"
)

// Final label constants of the presentation layer.
const (
	FinalUncertain = "uncertain"

	uncertainText = "Chưa thể kết luận"
	trueNewsText  = "Tin thật"
)

// Color and banner tags handed to the frontend.
const (
	ColorGreen  = "text-green"
	ColorRed    = "text-red"
	ColorOrange = "text-orange"
	ColorGray   = "text-gray"
)

// fakeLabelTexts maps each misinformation label to its verdict text.
var fakeLabelTexts = map[string]string{
	labels.Phishing:      "Tin giả dạng lừa đảo (Phishing)",
	labels.Deepfake:      "Tin giả Deepfake",
	labels.FinancialScam: "Lừa đảo tài chính",
	labels.Hoax:          "Tin đồn sai sự thật",
	labels.Malware:       "Phát tán mã độc",
}

// UIState carries styling hints for the frontend.
type UIState struct {
	BorderClass string `json:"border_class"`
	ColorClass  string `json:"color_class"`
}

// FinalResult is the user-facing verdict.
type FinalResult struct {
	FinalLabel      string  `json:"final_label"`
	FinalLabelText  string  `json:"final_label_text"`
	Confidence      float64 `json:"confidence"`
	ConfidenceLevel string  `json:"confidence_level"`
	UIState         UIState `json:"ui_state"`
}

// Reasons is the flattened, ordered human-readable justification list.
type Reasons struct {
	Summary []string `json:"summary"`
}

// UIResponse is the full payload returned to the frontend.
type UIResponse struct {
	Status         string                         `json:"status"`
	Result         FinalResult                    `json:"result"`
	TopPredictions []classification.TopPrediction `json:"top_predictions"`
	Reasons        Reasons                        `json:"reasons"`
}

// Mapper converts a raw model decision into the final user-facing verdict.
// It applies its own threshold policy, configured independently from the
// inference core: the two layers are separate bounded contexts with separate
// tuning needs.
type Mapper struct {
	high   float64
	medium float64
	low    float64
}

// NewMapper creates a mapper with the given UI policy.
func NewMapper(policy config.UIConfig) *Mapper {
	return &Mapper{
		high:   policy.ConfidenceHigh,
		medium: policy.ConfidenceMedium,
		low:    policy.ConfidenceLow,
	}
}

// Map derives the final verdict from a model output. Rules are evaluated in
// order, first match wins:
//
//  1. status != predicted, or confidence below the low threshold -> uncertain
//  2. true_news at high confidence -> true_news
//  3. a fake label at medium confidence -> that label
//  4. otherwise -> uncertain
func (m *Mapper) Map(out classification.ModelOutput) UIResponse {
	label := out.Prediction.Label
	confidence := out.Prediction.Confidence

	var finalLabel, finalText string
	switch {
	case out.Status != classification.StatusPredicted || confidence < m.low:
		finalLabel, finalText = FinalUncertain, uncertainText
	case label == labels.TrueNews && confidence >= m.high:
		finalLabel, finalText = labels.TrueNews, trueNewsText
	case labels.IsFake(label) && confidence >= m.medium:
		finalLabel, finalText = label, fakeLabelTexts[label]
	default:
		finalLabel, finalText = FinalUncertain, uncertainText
	}

	return UIResponse{
		Status: "success",
		Result: FinalResult{
			FinalLabel:      finalLabel,
			FinalLabelText:  finalText,
			Confidence:      confidence,
			ConfidenceLevel: m.confidenceLevel(confidence),
			UIState: UIState{
				BorderClass: m.borderClass(finalLabel, confidence),
				ColorClass:  m.colorClass(finalLabel, confidence),
			},
		},
		TopPredictions: out.Prediction.TopPredictions,
		Reasons:        Reasons{Summary: m.collectReasons(finalLabel, out.Explanation)},
	}
}

func (m *Mapper) confidenceLevel(confidence float64) string {
	switch {
	case confidence >= m.high:
		return "high"
	case confidence >= m.medium:
		return "medium"
	case confidence >= m.low:
		return "low"
	}
	return "unknown"
}

func (m *Mapper) borderClass(finalLabel string, confidence float64) string {
	switch {
	case finalLabel == labels.TrueNews:
		return "Chúc mừng bạn!"
	case confidence > m.medium && confidence < m.high:
		return "Cần kiểm chứng thêm!"
	case confidence < m.medium:
		return "Không đủ thông tin"
	}
	return "Xin hãy cẩn thận!"
}

func (m *Mapper) colorClass(finalLabel string, confidence float64) string {
	switch {
	case confidence > m.high:
		if finalLabel == labels.TrueNews {
			return ColorGreen
		}
		return ColorRed
	case confidence > m.medium && confidence < m.high:
		return ColorOrange
	}
	return ColorGray
}

// collectReasons flattens the explanation into an ordered list: an opening
// remark for true news, every suspicious phrase with its matched span
// quoted, then every EDA reason. Section headers frame the caveats when the
// verdict is true news. A single fallback line is emitted when nothing was
// collected.
func (m *Mapper) collectReasons(finalLabel string, explanation classification.Explanation) []string {
	var reasons []string

	if finalLabel == labels.TrueNews {
		reasons = append(reasons, "Đây là TIN THẬT với dự đoán có độ tin cậy rất cao\n")
	}

	if len(explanation.SuspiciousPhrases) > 0 {
		if finalLabel == labels.TrueNews {
			reasons = append(reasons, "Tuy nhiên:\n")
		}
		for _, item := range explanation.SuspiciousPhrases {
			reasons = append(reasons, fmt.Sprintf("%s: '%s'\n", item.Note, item.Phrase))
		}
	}

	if explanation.EDAAnalysis != nil && len(explanation.EDAAnalysis.EDAReasons) > 0 {
		if finalLabel == labels.TrueNews {
			reasons = append(reasons, "CHÚ Ý:\n")
		}
		reasons = append(reasons, explanation.EDAAnalysis.EDAReasons...)
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "Không phát hiện dấu hiệu đủ mạnh để kết luận")
	}

	return reasons
}
