// Package query builds the memory search query for one conversational turn,
// optionally folding recent conversation history into it.
package query

import (
	"strings"

	"chat-guardian-be/pkg/guardian"
)

// Delimiter joins history texts and the current message into one query.
const Delimiter = " "

// timestampSuffix marks the "current time" footer appended to message texts
// upstream; it must not leak into the search query.
const timestampSuffix = "\n\ncurrent time:"

// maxHistoryTurns caps how many previous turns can be folded in, whatever the
// configured history length says.
const maxHistoryTurns = 10

// Build produces the search query for the current message. Pure function of
// its inputs; always returns a string.
func Build(message string, history []guardian.Turn, settings guardian.Settings) string {
	if !settings.UseConversationHistory || settings.ConversationHistoryLength <= 0 {
		return Truncate(message, settings.MaxQueryLength)
	}

	n := settings.ConversationHistoryLength
	if n > maxHistoryTurns {
		n = maxHistoryTurns
	}
	if n > len(history) {
		n = len(history)
	}

	parts := make([]string, 0, n+1)
	for _, turn := range history[len(history)-n:] {
		text := cleanTurnText(turn.Text)
		if text != "" {
			parts = append(parts, text)
		}
	}
	parts = append(parts, message)

	return Truncate(strings.Join(parts, Delimiter), settings.MaxQueryLength)
}

// Truncate drops characters from the front until s fits in max runes. The
// result is always a suffix of s, cut at a rune boundary.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[len(runes)-max:])
}

// cleanTurnText strips the upstream timestamp footer and surrounding space.
func cleanTurnText(text string) string {
	if i := strings.Index(text, timestampSuffix); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}
