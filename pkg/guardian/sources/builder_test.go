package sources

import (
	"reflect"
	"strings"
	"testing"

	"chat-guardian-be/pkg/guardian"
	"chat-guardian-be/pkg/memory"
)

func doc(label, url string, contentLen int) memory.Document {
	return memory.Document{Label: label, URL: url, Content: strings.Repeat("x", contentLen)}
}

func noFilters() guardian.Settings {
	s := guardian.DefaultSettings()
	s.MinSourceChar = 0
	return s
}

func labels(list []guardian.Source) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.Label
	}
	return out
}

func TestLabelDedupKeepsFirstURL(t *testing.T) {
	// Two documents with identical labels and different URLs collapse to one
	// source carrying the first-seen URL.
	got := Build(Input{
		Primary: []memory.Document{
			doc("FAQ", "https://ex.com/u1", 50),
			doc("FAQ", "https://ex.com/u2", 50),
		},
	}, noFilters())

	want := []guardian.Source{{URL: "https://ex.com/u1", Label: "FAQ"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Build() = %+v, want %+v", got, want)
	}
}

func TestEmptyLabelsAlwaysKept(t *testing.T) {
	got := Build(Input{
		Primary: []memory.Document{
			doc("", "https://ex.com/a", 10),
			doc("", "https://ex.com/b", 10),
		},
	}, noFilters())

	if len(got) != 2 {
		t.Errorf("expected both unlabeled sources kept, got %d", len(got))
	}
}

func TestMinContentFilter(t *testing.T) {
	s := noFilters()
	s.MinSourceChar = 100

	got := Build(Input{
		Primary: []memory.Document{
			doc("Short", "https://ex.com/short", 99),
			doc("Long", "https://ex.com/long", 100),
		},
	}, s)

	if !reflect.DeepEqual(labels(got), []string{"Long"}) {
		t.Errorf("labels = %v, want [Long]", labels(got))
	}
}

func TestLabelNormalization(t *testing.T) {
	got := Build(Input{
		Primary: []memory.Document{
			doc("Pricing / Plans", "https://ex.com/pricing", 10),
		},
	}, noFilters())

	if got[0].Label != "Pricing" {
		t.Errorf("label = %q, want section suffix cut", got[0].Label)
	}
}

func TestDoublePassIntersection(t *testing.T) {
	s := noFilters()
	s.DoublePass = true

	primary := []memory.Document{
		doc("A", "https://ex.com/a", 10),
		doc("B", "https://ex.com/b", 10),
		doc("C", "https://ex.com/c", 10),
	}

	tests := []struct {
		name      string
		secondary []memory.Document
		ran       bool
		failed    bool
		want      []string
	}{
		{
			name:      "keeps only labels in both",
			secondary: []memory.Document{doc("C", "https://other/c", 10), doc("A", "https://other/a", 10)},
			ran:       true,
			want:      []string{"A", "C"},
		},
		{
			name:      "empty second pass falls back to pass one",
			secondary: nil,
			ran:       true,
			want:      []string{"A", "B", "C"},
		},
		{
			name:      "failed second pass falls back to pass one",
			secondary: nil,
			ran:       true,
			failed:    true,
			want:      []string{"A", "B", "C"},
		},
		{
			name:      "disjoint sets fall back to pass one",
			secondary: []memory.Document{doc("Z", "https://other/z", 10)},
			ran:       true,
			want:      []string{"A", "B", "C"},
		},
		{
			name:      "second pass never ran",
			secondary: []memory.Document{doc("A", "https://other/a", 10)},
			ran:       false,
			want:      []string{"A", "B", "C"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Build(Input{
				Primary:          primary,
				Secondary:        tt.secondary,
				SecondPassRan:    tt.ran,
				SecondPassFailed: tt.failed,
			}, s)

			if !reflect.DeepEqual(labels(got), tt.want) {
				t.Errorf("labels = %v, want %v", labels(got), tt.want)
			}

			// Monotonicity: the double-pass list is always a subset of the
			// single-pass list by label.
			single := Build(Input{Primary: primary}, noFilters())
			inSingle := make(map[string]bool)
			for _, l := range labels(single) {
				inSingle[l] = true
			}
			for _, l := range labels(got) {
				if !inSingle[l] {
					t.Errorf("label %q not present in single-pass result", l)
				}
			}
		})
	}
}

func TestInlineLinkRemoval(t *testing.T) {
	s := noFilters()
	s.RemoveInlineLinksFromSources = true

	got := Build(Input{
		Primary: []memory.Document{
			doc("Cited", "https://ex.com/cited", 10),
			doc("Fresh", "https://ex.com/fresh", 10),
		},
		ReplyText: "See https://ex.com/cited. for details",
	}, s)

	if !reflect.DeepEqual(labels(got), []string{"Fresh"}) {
		t.Errorf("labels = %v, want [Fresh]", labels(got))
	}
}

func TestInlineMarkdownLinkRemoval(t *testing.T) {
	s := noFilters()
	s.RemoveInlineLinksFromSources = true

	got := Build(Input{
		Primary: []memory.Document{
			doc("Docs", "https://ex.com/docs", 10),
		},
		ReplyText: "Check [the docs](https://ex.com/docs) first.",
	}, s)

	if len(got) != 0 {
		t.Errorf("markdown-cited source should be removed, got %v", labels(got))
	}
}

func TestSuggestionFirstReordering(t *testing.T) {
	s := noFilters()
	s.SuggestionFirst = true

	got := Build(Input{
		Primary: []memory.Document{
			doc("Alpha", "https://ex.com/alpha", 10),
			doc("Beta", "https://ex.com/beta", 10),
			doc("Gamma", "https://ex.com/gamma", 10),
		},
		ReplyText: "As Gamma explains, see https://ex.com/beta as well.",
	}, s)

	if !reflect.DeepEqual(labels(got), []string{"Beta", "Gamma", "Alpha"}) {
		t.Errorf("labels = %v, want referenced sources first in original order", labels(got))
	}
}

func TestRemovalRunsBeforeReordering(t *testing.T) {
	s := noFilters()
	s.RemoveInlineLinksFromSources = true
	s.SuggestionFirst = true

	got := Build(Input{
		Primary: []memory.Document{
			doc("Alpha", "https://ex.com/alpha", 10),
			doc("Beta", "https://ex.com/beta", 10),
		},
		ReplyText: "Beta is covered at https://ex.com/beta already.",
	}, s)

	// Beta's URL is inline so the source is removed, not promoted.
	if !reflect.DeepEqual(labels(got), []string{"Alpha"}) {
		t.Errorf("labels = %v, want [Alpha]", labels(got))
	}
}

func TestBypassedTurnHasNoSources(t *testing.T) {
	got := Build(Input{
		Primary:  []memory.Document{doc("FAQ", "https://ex.com/faq", 500)},
		Bypassed: true,
	}, noFilters())

	if len(got) != 0 {
		t.Errorf("bypassed turn returned %d sources, want 0", len(got))
	}
}

func TestDocumentsWithoutURLDropped(t *testing.T) {
	got := Build(Input{
		Primary: []memory.Document{
			doc("NoURL", "", 10),
			doc("HasURL", "https://ex.com/x", 10),
		},
	}, noFilters())

	if !reflect.DeepEqual(labels(got), []string{"HasURL"}) {
		t.Errorf("labels = %v, want [HasURL]", labels(got))
	}
}
