package classification

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vietfact/newsguard/pkg/labels"
)

// defaultSuspiciousKeywords are the label-conditioned keyword lists extracted
// from the training data vocabulary. Overridable via config.
var defaultSuspiciousKeywords = map[string][]string{
	labels.FinancialScam: {
		"chuyển khoản",
		"trúng thưởng",
		"hoàn tiền",
		"đầu tư",
		"lợi nhuận cao",
	},
	labels.Phishing: {
		"xác minh tài khoản",
		"cập nhật thông tin",
		"khóa tài khoản",
		"click",
		"đường link",
	},
	labels.Hoax: {
		"khẩn cấp",
		"ngay lập tức",
		"chia sẻ ngay",
	},
	labels.Malware: {
		"tải file",
		"cài đặt ứng dụng",
		"file đính kèm",
	},
	labels.Deepfake: {
		"ảnh giả",
		"video giả",
	},
}

// regexFamily is one label-agnostic structural pattern family.
type regexFamily struct {
	name    string
	pattern *regexp.Regexp
}

// PhraseMatcher scans input text for label-conditioned keywords and generic
// structural patterns. Matching is exact substring / exact regex only, which
// keeps explanations auditable.
type PhraseMatcher struct {
	keywords   map[string][]string
	families   []regexFamily
	maxPhrases int
}

// NewPhraseMatcher creates a matcher. keywords may be nil to use the built-in
// lists; maxPhrases caps the total number of collected spans.
func NewPhraseMatcher(keywords map[string][]string, maxPhrases int) *PhraseMatcher {
	if keywords == nil {
		keywords = defaultSuspiciousKeywords
	}
	return &PhraseMatcher{
		keywords: keywords,
		// Family order is fixed; it determines collection priority among
		// the structural patterns.
		families: []regexFamily{
			{"url", regexp.MustCompile(`http[s]?://\S+`)},
			{"email", regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+`)},
			{"phone", regexp.MustCompile(`\b\d{9,11}\b`)},
		},
		maxPhrases: maxPhrases,
	}
}

// Match returns up to maxPhrases suspicious spans for the predicted label.
// Keyword matches are label-conditioned evidence and are always collected
// first; structural regex matches only fill remaining capacity. Collection
// stops the moment the cap is reached.
func (m *PhraseMatcher) Match(text, predictedLabel string) []SuspiciousPhrase {
	lowered := strings.ToLower(text)
	results := make([]SuspiciousPhrase, 0, m.maxPhrases)
	seen := map[string]bool{}

	for _, kw := range m.keywords[predictedLabel] {
		if strings.Contains(lowered, kw) && !seen[kw] {
			results = append(results, SuspiciousPhrase{
				Phrase:   kw,
				Type:     "keyword",
				Strength: "medium",
				Note:     fmt.Sprintf("Cụm từ thường gặp trong nhóm %s", predictedLabel),
			})
			seen[kw] = true
		}
		if len(results) >= m.maxPhrases {
			return results
		}
	}

	// Regex families scan the original (not lowercased) text.
	for _, fam := range m.families {
		matched := map[string]bool{}
		for _, span := range fam.pattern.FindAllString(text, -1) {
			if matched[span] || seen[span] {
				continue
			}
			matched[span] = true
			results = append(results, SuspiciousPhrase{
				Phrase:   span,
				Type:     fam.name,
				Strength: "weak",
				Note:     fmt.Sprintf("Phát hiện mẫu %s trong văn bản", fam.name),
			})
			seen[span] = true

			if len(results) >= m.maxPhrases {
				return results
			}
		}
	}

	return results
}
