package labels

import (
	"encoding/json"
	"fmt"
	"os"
)

// Label names. The declaration order fixes the integer ids used by the
// trained model; changing it invalidates every persisted checkpoint.
const (
	TrueNews      = "true_news"
	Deepfake      = "deepfake"
	FinancialScam = "financial_scam"
	Hoax          = "hoax"
	Malware       = "malware"
	Phishing      = "phishing"
)

// Order is the canonical id order shared between training and inference.
var Order = []string{TrueNews, Deepfake, FinancialScam, Hoax, Malware, Phishing}

// Descriptions holds the human-readable meaning of each label for UI and
// explanation output.
var Descriptions = map[string]string{
	TrueNews:      "Tin tức chính thống, không có dấu hiệu lừa đảo hoặc sai lệch",
	Deepfake:      "Tin giả được tạo hoặc chỉnh sửa bằng công nghệ AI",
	FinancialScam: "Tin lừa đảo liên quan đến tiền bạc hoặc giao dịch tài chính",
	Hoax:          "Tin bịa đặt hoặc gây hiểu lầm, không có cơ sở xác thực",
	Malware:       "Tin chứa hoặc dẫn tới mã độc gây hại cho thiết bị",
	Phishing:      "Tin nhằm đánh cắp thông tin cá nhân như mật khẩu, OTP, tài khoản",
}

// Registry holds the immutable mapping between label names and class ids.
// It is built once at process start and shared read-only afterwards.
type Registry struct {
	LabelToIdx   map[string]int    `json:"label_to_idx"`
	IdxToLabel   map[string]string `json:"idx_to_label"`
	Descriptions map[string]string `json:"label_descriptions,omitempty"`
}

// Default builds the registry from the canonical label order.
func Default() *Registry {
	labelToIdx := make(map[string]int, len(Order))
	idxToLabel := make(map[string]string, len(Order))
	for i, label := range Order {
		labelToIdx[label] = i
		idxToLabel[fmt.Sprintf("%d", i)] = label
	}
	return &Registry{
		LabelToIdx:   labelToIdx,
		IdxToLabel:   idxToLabel,
		Descriptions: Descriptions,
	}
}

// Load reads a registry from a JSON mapping file and validates it.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read label mapping file: %w", err)
	}

	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse label mapping JSON: %w", err)
	}

	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid label mapping %s: %w", path, err)
	}
	return &reg, nil
}

// Validate checks that the two mappings are mutual inverses and that the ids
// form the contiguous range [0, len). The model's output vector is indexed by
// position, so a 1-based or gappy mapping would silently misalign every
// prediction.
func (r *Registry) Validate() error {
	if len(r.LabelToIdx) == 0 {
		return fmt.Errorf("empty label mapping")
	}
	if len(r.LabelToIdx) != len(r.IdxToLabel) {
		return fmt.Errorf("label_to_idx has %d entries, idx_to_label has %d",
			len(r.LabelToIdx), len(r.IdxToLabel))
	}
	for label, idx := range r.LabelToIdx {
		back, ok := r.IdxToLabel[fmt.Sprintf("%d", idx)]
		if !ok {
			return fmt.Errorf("label %q maps to id %d but idx_to_label has no such id", label, idx)
		}
		if back != label {
			return fmt.Errorf("id %d maps back to %q, expected %q", idx, back, label)
		}
	}
	for i := 0; i < len(r.LabelToIdx); i++ {
		if _, ok := r.IdxToLabel[fmt.Sprintf("%d", i)]; !ok {
			return fmt.Errorf("ids must be 0-based and contiguous: id %d is missing", i)
		}
	}
	return nil
}

// LabelFromIndex converts a class index to a label name.
func (r *Registry) LabelFromIndex(classIndex int) (string, bool) {
	label, ok := r.IdxToLabel[fmt.Sprintf("%d", classIndex)]
	return label, ok
}

// IndexFromLabel converts a label name to its class index.
func (r *Registry) IndexFromLabel(label string) (int, bool) {
	idx, ok := r.LabelToIdx[label]
	return idx, ok
}

// Count returns the number of labels.
func (r *Registry) Count() int {
	return len(r.LabelToIdx)
}

// Names returns the label names in id order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.IdxToLabel))
	for i := range names {
		names[i] = r.IdxToLabel[fmt.Sprintf("%d", i)]
	}
	return names
}

// Description returns the description for a given label.
func (r *Registry) Description(label string) (string, bool) {
	if r.Descriptions == nil {
		return "", false
	}
	desc, ok := r.Descriptions[label]
	return desc, ok
}

// IsFake reports whether the label is one of the misinformation categories.
func IsFake(label string) bool {
	switch label {
	case Deepfake, FinancialScam, Hoax, Malware, Phishing:
		return true
	}
	return false
}
