package features

import (
	"testing"
)

func TestNewBundleCounts(t *testing.T) {
	in := Input{
		Text:      "Tin khẩn cấp về bão",
		URL:       "https://example.com/a",
		NumShares: 12,
		// NumComments left at zero value; zero is a legitimate count.
	}

	bundle, err := NewBundle(in)
	if err != nil {
		t.Fatalf("NewBundle failed: %v", err)
	}

	if got, want := bundle.Numeric.TextWordCount, 5.0; got != want {
		t.Errorf("word count = %v, want %v", got, want)
	}
	// Rune count, not byte count: Vietnamese text is multi-byte in UTF-8.
	if got, want := bundle.Numeric.TextCharCount, 19.0; got != want {
		t.Errorf("char count = %v, want %v", got, want)
	}
	if bundle.TextLength != 5 {
		t.Errorf("TextLength = %d, want 5", bundle.TextLength)
	}
	if bundle.Numeric.NumShares != 12 {
		t.Errorf("NumShares = %v, want 12", bundle.Numeric.NumShares)
	}
	if !bundle.Binary.HasURL {
		t.Error("HasURL should be true when a URL is present")
	}
	if bundle.Binary.HasImages || bundle.Binary.HasVideos || bundle.Binary.HasFactCheck {
		t.Error("unset flags should stay false")
	}
}

func TestNewBundleAcceptsUnknownSentinel(t *testing.T) {
	bundle, err := NewBundle(Input{
		Text:        "một hai ba",
		NumShares:   UnknownCount,
		NumComments: UnknownCount,
	})
	if err != nil {
		t.Fatalf("sentinel counts must be accepted: %v", err)
	}
	if bundle.Numeric.NumShares != UnknownCount || bundle.Numeric.NumComments != UnknownCount {
		t.Error("sentinel must be preserved, not coerced to zero")
	}
}

func TestNewBundleRejectsBelowSentinel(t *testing.T) {
	if _, err := NewBundle(Input{Text: "x", NumShares: -2}); err == nil {
		t.Error("expected error for num_shares below sentinel")
	}
	if _, err := NewBundle(Input{Text: "x", NumComments: -5}); err == nil {
		t.Error("expected error for num_comments below sentinel")
	}
}

func TestFieldsDeclarationOrder(t *testing.T) {
	numKeys := []string{KeyTextWordCount, KeyTextCharCount, KeyNumShares, KeyNumComments}
	for i, f := range (NumericFeatures{}).Fields() {
		if f.Key != numKeys[i] {
			t.Errorf("numeric field %d = %q, want %q", i, f.Key, numKeys[i])
		}
	}

	binKeys := []string{KeyHasURL, KeyHasImages, KeyHasVideos, KeyHasFactCheck}
	for i, f := range (BinaryFeatures{}).Fields() {
		if f.Key != binKeys[i] {
			t.Errorf("binary field %d = %q, want %q", i, f.Key, binKeys[i])
		}
	}
}
