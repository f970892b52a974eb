// Package sources turns one or two memory candidate sets into the final
// ordered, deduplicated source list attached to an outgoing message.
package sources

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"chat-guardian-be/pkg/guardian"
	"chat-guardian-be/pkg/memory"
)

// Input bundles the material for one build. Secondary is only consulted when
// the double pass actually ran; a failed or empty second pass degrades to the
// primary set alone.
type Input struct {
	Primary          []memory.Document
	Secondary        []memory.Document
	SecondPassRan    bool
	SecondPassFailed bool
	ReplyText        string
	Bypassed         bool
}

var (
	markdownLinkRe = regexp.MustCompile(`\[[^\]]*\]\((https?://[^\s)]+)\)`)
	plainURLRe     = regexp.MustCompile(`https?://[^\s<>\[\]()]+`)
)

// Build applies the transformation stages in their fixed order:
// min-content filter, double-pass intersection, label dedup, inline-link
// removal, suggestion-first reordering, bypass override.
func Build(in Input, settings guardian.Settings) []guardian.Source {
	// A bypassed turn never carries sources, whatever the stages would say.
	if in.Bypassed {
		return []guardian.Source{}
	}

	primary := filterByLength(in.Primary, settings.MinSourceChar)

	selected := primary
	if settings.DoublePass && in.SecondPassRan && !in.SecondPassFailed {
		secondary := filterByLength(in.Secondary, settings.MinSourceChar)
		if intersected := intersectByLabel(primary, secondary); len(intersected) > 0 {
			selected = intersected
		}
	}

	list := dedupeByLabel(toSources(selected))

	if settings.RemoveInlineLinksFromSources {
		list = removeInline(list, in.ReplyText)
	}
	if settings.SuggestionFirst {
		list = suggestionFirst(list, in.ReplyText)
	}

	return list
}

func filterByLength(docs []memory.Document, minChars int) []memory.Document {
	if minChars <= 0 {
		return docs
	}
	kept := make([]memory.Document, 0, len(docs))
	for _, d := range docs {
		if utf8.RuneCountInString(d.Content) >= minChars {
			kept = append(kept, d)
		}
	}
	return kept
}

// intersectByLabel keeps primary documents whose normalized label also occurs
// in the secondary set, preserving primary order. The result is always a
// subset of primary.
func intersectByLabel(primary, secondary []memory.Document) []memory.Document {
	inSecond := make(map[string]struct{}, len(secondary))
	for _, d := range secondary {
		inSecond[normalizeLabel(d.Label)] = struct{}{}
	}

	var kept []memory.Document
	for _, d := range primary {
		if _, ok := inSecond[normalizeLabel(d.Label)]; ok {
			kept = append(kept, d)
		}
	}
	return kept
}

func toSources(docs []memory.Document) []guardian.Source {
	out := make([]guardian.Source, 0, len(docs))
	for _, d := range docs {
		if d.URL == "" {
			continue
		}
		out = append(out, guardian.Source{URL: d.URL, Label: normalizeLabel(d.Label)})
	}
	return out
}

// normalizeLabel cuts crawler-style "Page/Section" titles down to the page.
func normalizeLabel(label string) string {
	head, _, _ := strings.Cut(label, "/")
	return strings.TrimSpace(head)
}

// dedupeByLabel keeps the first occurrence of each label, so the first-seen
// URL wins. Sources without a label are always kept.
func dedupeByLabel(list []guardian.Source) []guardian.Source {
	seen := make(map[string]struct{}, len(list))
	out := make([]guardian.Source, 0, len(list))
	for _, s := range list {
		if s.Label == "" {
			out = append(out, s)
			continue
		}
		if _, ok := seen[s.Label]; ok {
			continue
		}
		seen[s.Label] = struct{}{}
		out = append(out, s)
	}
	return out
}

func removeInline(list []guardian.Source, replyText string) []guardian.Source {
	inline := extractURLs(replyText)
	out := make([]guardian.Source, 0, len(list))
	for _, s := range list {
		if _, ok := inline[s.URL]; ok {
			continue
		}
		out = append(out, s)
	}
	return out
}

// suggestionFirst moves sources referenced in the reply (by URL or label) to
// the front, preserving relative order within each partition.
func suggestionFirst(list []guardian.Source, replyText string) []guardian.Source {
	inline := extractURLs(replyText)

	referenced := make([]guardian.Source, 0, len(list))
	rest := make([]guardian.Source, 0, len(list))
	for _, s := range list {
		_, byURL := inline[s.URL]
		byLabel := s.Label != "" && strings.Contains(replyText, s.Label)
		if byURL || byLabel {
			referenced = append(referenced, s)
		} else {
			rest = append(rest, s)
		}
	}
	return append(referenced, rest...)
}

// extractURLs collects every markdown and plain URL in text, with trailing
// punctuation trimmed the way chat replies tend to attach it.
func extractURLs(text string) map[string]struct{} {
	urls := make(map[string]struct{})

	for _, m := range markdownLinkRe.FindAllStringSubmatch(text, -1) {
		urls[trimTrailingPunct(m[1])] = struct{}{}
	}
	for _, u := range plainURLRe.FindAllString(text, -1) {
		urls[trimTrailingPunct(u)] = struct{}{}
	}
	return urls
}

func trimTrailingPunct(url string) string {
	return strings.TrimRight(url, ".,!?;")
}
