package guardian

import "strings"

// NoSourcesMarker is the literal token a message may carry to opt out of
// gating and source enrichment for one turn.
const NoSourcesMarker = "<no_sources>"

// StripNoSourcesMarker removes every occurrence of the marker from text and
// reports whether it was present. The stripped text is what must be used for
// search, generation and display.
func StripNoSourcesMarker(text string) (string, bool) {
	if !strings.Contains(text, NoSourcesMarker) {
		return text, false
	}
	return strings.TrimSpace(strings.ReplaceAll(text, NoSourcesMarker, "")), true
}
