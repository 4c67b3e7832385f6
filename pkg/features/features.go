package features

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// UnknownCount is the sentinel for count features that were not collected
// upstream. Sentinel values are excluded from statistical comparison, not
// treated as zero.
const UnknownCount = -1

// Feature keys as they appear in the EDA artifacts. The keys are fixed here
// so a typo cannot silently produce zero explanation reasons.
const (
	KeyTextWordCount = "text_word_count"
	KeyTextCharCount = "text_char_count"
	KeyNumShares     = "num_shares"
	KeyNumComments   = "num_comments"

	KeyHasURL       = "has_url"
	KeyHasImages    = "has_images"
	KeyHasVideos    = "has_videos"
	KeyHasFactCheck = "has_fact_check"
)

// NumericFeatures holds the count features of a single news item.
type NumericFeatures struct {
	TextWordCount float64
	TextCharCount float64
	NumShares     float64
	NumComments   float64
}

// NumericField is one named numeric feature value.
type NumericField struct {
	Key   string
	Value float64
}

// Fields returns the numeric features in declaration order.
func (n NumericFeatures) Fields() []NumericField {
	return []NumericField{
		{KeyTextWordCount, n.TextWordCount},
		{KeyTextCharCount, n.TextCharCount},
		{KeyNumShares, n.NumShares},
		{KeyNumComments, n.NumComments},
	}
}

// BinaryFeatures holds the presence flags of a single news item.
type BinaryFeatures struct {
	HasURL       bool
	HasImages    bool
	HasVideos    bool
	HasFactCheck bool
}

// BinaryField is one named binary feature value.
type BinaryField struct {
	Key   string
	Value bool
}

// Fields returns the binary features in declaration order.
func (b BinaryFeatures) Fields() []BinaryField {
	return []BinaryField{
		{KeyHasURL, b.HasURL},
		{KeyHasImages, b.HasImages},
		{KeyHasVideos, b.HasVideos},
		{KeyHasFactCheck, b.HasFactCheck},
	}
}

// Bundle is the per-request feature bundle consumed by the explanation
// pipeline. Immutable once constructed.
type Bundle struct {
	Numeric NumericFeatures
	Binary  BinaryFeatures
	// TextLength is the word count used for the text-length band check.
	TextLength int
}

// Input carries the raw per-item fields the bundle is derived from.
type Input struct {
	Text         string
	URL          string
	HasImages    bool
	HasVideos    bool
	NumShares    int
	NumComments  int
	HasFactCheck bool
}

// NewBundle derives a validated feature bundle from raw input. Counts below
// the UnknownCount sentinel are rejected.
func NewBundle(in Input) (Bundle, error) {
	if in.NumShares < UnknownCount {
		return Bundle{}, fmt.Errorf("num_shares %d below unknown sentinel %d", in.NumShares, UnknownCount)
	}
	if in.NumComments < UnknownCount {
		return Bundle{}, fmt.Errorf("num_comments %d below unknown sentinel %d", in.NumComments, UnknownCount)
	}

	words := len(strings.Fields(in.Text))
	return Bundle{
		Numeric: NumericFeatures{
			TextWordCount: float64(words),
			TextCharCount: float64(utf8.RuneCountInString(in.Text)),
			NumShares:     float64(in.NumShares),
			NumComments:   float64(in.NumComments),
		},
		Binary: BinaryFeatures{
			HasURL:       in.URL != "",
			HasImages:    in.HasImages,
			HasVideos:    in.HasVideos,
			HasFactCheck: in.HasFactCheck,
		},
		TextLength: words,
	}, nil
}
