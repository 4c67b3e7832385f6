package classification

import (
	"testing"

	"github.com/vietfact/newsguard/pkg/labels"
)

func TestMatchKeywords(t *testing.T) {
	m := NewPhraseMatcher(nil, 5)

	text := "Bạn đã TRÚNG THƯỞNG! Hãy chuyển khoản ngay để nhận quà."
	got := m.Match(text, labels.FinancialScam)

	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d: %+v", len(got), got)
	}
	// Declaration order of the keyword list, not text order.
	if got[0].Phrase != "chuyển khoản" || got[1].Phrase != "trúng thưởng" {
		t.Errorf("unexpected phrases: %+v", got)
	}
	for _, p := range got {
		if p.Type != "keyword" || p.Strength != "medium" {
			t.Errorf("keyword match has wrong type/strength: %+v", p)
		}
	}
}

func TestMatchIsCaseInsensitiveForKeywords(t *testing.T) {
	m := NewPhraseMatcher(nil, 5)

	got := m.Match("KHẨN CẤP: chia sẻ ngay!", labels.Hoax)
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
}

func TestMatchRegexFamilies(t *testing.T) {
	m := NewPhraseMatcher(nil, 5)

	text := "Xem tại https://t.co/abc hoặc liên hệ admin@scam.vn, gọi 0901234567"
	got := m.Match(text, labels.TrueNews) // no keywords for true_news

	if len(got) != 3 {
		t.Fatalf("expected 3 matches, got %d: %+v", len(got), got)
	}
	wantTypes := []string{"url", "email", "phone"}
	for i, want := range wantTypes {
		if got[i].Type != want {
			t.Errorf("match %d type = %s, want %s", i, got[i].Type, want)
		}
		if got[i].Strength != "weak" {
			t.Errorf("structural match %d should be weak", i)
		}
	}
}

func TestMatchCapKeywordsFirst(t *testing.T) {
	m := NewPhraseMatcher(map[string][]string{
		"hoax": {"một", "hai", "ba"},
	}, 2)

	// All three keywords plus a URL are present; the cap must be filled by
	// keywords alone, in list order.
	got := m.Match("một hai ba https://example.com", "hoax")
	if len(got) != 2 {
		t.Fatalf("expected cap of 2, got %d", len(got))
	}
	if got[0].Phrase != "một" || got[1].Phrase != "hai" {
		t.Errorf("cap must keep keyword list order: %+v", got)
	}
}

func TestMatchDeduplicatesRegexSpans(t *testing.T) {
	m := NewPhraseMatcher(nil, 10)

	got := m.Match("gọi 0901234567 hoặc 0901234567", labels.TrueNews)
	if len(got) != 1 {
		t.Fatalf("duplicate spans must collapse, got %d matches", len(got))
	}
}

func TestMatchNoFindings(t *testing.T) {
	m := NewPhraseMatcher(nil, 5)

	if got := m.Match("Hôm nay trời đẹp.", labels.TrueNews); len(got) != 0 {
		t.Errorf("expected no matches, got %+v", got)
	}
}
