package utm

import (
	"net/url"
	"strings"
	"testing"

	"chat-guardian-be/pkg/guardian"
)

func TestAnnotateURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		utmSource string
		want      string
	}{
		{
			name:      "bare url",
			url:       "https://ex.com/a",
			utmSource: "newsletter",
			want:      "https://ex.com/a?utm_source=newsletter",
		},
		{
			name:      "existing params preserved",
			url:       "https://ex.com/a?x=1",
			utmSource: "newsletter",
			want:      "https://ex.com/a?utm_source=newsletter&x=1",
		},
		{
			name:      "already tagged stays untouched",
			url:       "https://ex.com/a?utm_source=old",
			utmSource: "newsletter",
			want:      "https://ex.com/a?utm_source=old",
		},
		{
			name:      "empty utm source is identity",
			url:       "https://ex.com/a?x=1",
			utmSource: "",
			want:      "https://ex.com/a?x=1",
		},
		{
			name:      "offset artifact stripped",
			url:       "https://ex.com/list/(offset)/20?x=1",
			utmSource: "",
			want:      "https://ex.com/list?x=1",
		},
		{
			name:      "malformed url unchanged",
			url:       "://not-a-url",
			utmSource: "newsletter",
			want:      "://not-a-url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnnotateURL(tt.url, tt.utmSource)
			if got != tt.want {
				t.Errorf("AnnotateURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestAnnotateURLIdempotent(t *testing.T) {
	once := AnnotateURL("https://ex.com/a?x=1", "newsletter")
	twice := AnnotateURL(once, "newsletter")

	if once != twice {
		t.Fatalf("annotation not idempotent: %q vs %q", once, twice)
	}

	u, err := url.Parse(twice)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := u.Query()["utm_source"]; len(got) != 1 {
		t.Errorf("utm_source appears %d times, want 1", len(got))
	}
	if u.Query().Get("x") != "1" {
		t.Errorf("existing parameter lost: %q", twice)
	}
}

func TestAnnotateSources(t *testing.T) {
	in := []guardian.Source{
		{URL: "https://ex.com/a?x=1", Label: "A"},
		{URL: "https://ex.com/b", Label: "B"},
	}

	got := AnnotateSources(in, "newsletter")
	for _, s := range got {
		if !strings.Contains(s.URL, "utm_source=newsletter") {
			t.Errorf("source %q not annotated", s.URL)
		}
	}
	if got[0].URL != "https://ex.com/a?utm_source=newsletter&x=1" {
		t.Errorf("existing params lost: %q", got[0].URL)
	}

	// Input slice must stay untouched.
	if in[0].URL != "https://ex.com/a?x=1" {
		t.Errorf("input mutated: %q", in[0].URL)
	}
}

func TestAnnotateTextMarkdownLinks(t *testing.T) {
	text := "Read [the guide](https://ex.com/guide) and [pricing](https://ex.com/pricing?plan=pro)."

	got := AnnotateText(text, "bot")

	if !strings.Contains(got, "[the guide](https://ex.com/guide?utm_source=bot)") {
		t.Errorf("markdown link not annotated: %q", got)
	}
	if !strings.Contains(got, "plan=pro") {
		t.Errorf("existing query param lost: %q", got)
	}
	if strings.Contains(got, "__MARKDOWN_LINK_") {
		t.Errorf("placeholder leaked into output: %q", got)
	}
}

func TestAnnotateTextPlainURL(t *testing.T) {
	got := AnnotateText("More at https://ex.com/help/account-settings.", "bot")

	if !strings.Contains(got, "utm_source=bot") {
		t.Errorf("plain URL not annotated: %q", got)
	}
	if !strings.Contains(got, "[Account Settings](") {
		t.Errorf("plain URL not named from its path: %q", got)
	}
	if !strings.HasSuffix(got, ".") {
		t.Errorf("trailing punctuation lost: %q", got)
	}
}

func TestAnnotateTextEmptySourceIsIdentity(t *testing.T) {
	text := "Links: https://ex.com/a and [b](https://ex.com/b)."
	if got := AnnotateText(text, ""); got != text {
		t.Errorf("AnnotateText with empty utm_source changed text: %q", got)
	}
}

func TestNameFromURLFallsBackToDomain(t *testing.T) {
	got := AnnotateText("Visit https://example.com now.", "bot")
	if !strings.Contains(got, "[Example.com](") {
		t.Errorf("expected domain-based name, got %q", got)
	}
}
