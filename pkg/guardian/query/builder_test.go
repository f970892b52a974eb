package query

import (
	"strings"
	"testing"

	"chat-guardian-be/pkg/guardian"
)

func settingsWithHistory(n, maxLen int) guardian.Settings {
	s := guardian.DefaultSettings()
	s.UseConversationHistory = true
	s.ConversationHistoryLength = n
	s.MaxQueryLength = maxLen
	return s
}

func TestBuild(t *testing.T) {
	history := []guardian.Turn{
		{Role: "user", Text: "how do I reset my password"},
		{Role: "assistant", Text: "Use the account settings page."},
		{Role: "user", Text: "and for the mobile app?"},
	}

	tests := []struct {
		name     string
		message  string
		history  []guardian.Turn
		settings guardian.Settings
		want     string
	}{
		{
			name:    "history disabled returns message",
			message: "what about two-factor auth?",
			history: history,
			settings: func() guardian.Settings {
				s := settingsWithHistory(3, 1000)
				s.UseConversationHistory = false
				return s
			}(),
			want: "what about two-factor auth?",
		},
		{
			name:     "zero history length returns message",
			message:  "what about two-factor auth?",
			history:  history,
			settings: settingsWithHistory(0, 1000),
			want:     "what about two-factor auth?",
		},
		{
			name:     "history merged chronologically",
			message:  "what about two-factor auth?",
			history:  history,
			settings: settingsWithHistory(2, 1000),
			want:     "Use the account settings page. and for the mobile app? what about two-factor auth?",
		},
		{
			name:     "history shorter than requested",
			message:  "ok",
			history:  history[:1],
			settings: settingsWithHistory(5, 1000),
			want:     "how do I reset my password ok",
		},
		{
			name:    "timestamp footer stripped",
			message: "next question",
			history: []guardian.Turn{
				{Role: "user", Text: "first question\n\ncurrent time: 2026-08-23 10:00:00"},
			},
			settings: settingsWithHistory(1, 1000),
			want:     "first question next question",
		},
		{
			name:     "no history turns at all",
			message:  "hello there, anyone?",
			history:  nil,
			settings: settingsWithHistory(3, 1000),
			want:     "hello there, anyone?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Build(tt.message, tt.history, tt.settings)
			if got != tt.want {
				t.Errorf("Build() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildClampsHistoryLength(t *testing.T) {
	history := make([]guardian.Turn, 20)
	for i := range history {
		history[i] = guardian.Turn{Role: "user", Text: "turn"}
	}

	got := Build("msg", history, settingsWithHistory(15, 10000))
	// 10 turns max plus the current message
	if n := len(strings.Fields(got)); n != 11 {
		t.Errorf("expected 11 parts after clamping, got %d (%q)", n, got)
	}
}

func TestTruncateKeepsSuffix(t *testing.T) {
	s := strings.Repeat("a", 50) + strings.Repeat("b", 50)

	got := Truncate(s, 60)
	if len([]rune(got)) != 60 {
		t.Fatalf("truncated length = %d, want 60", len([]rune(got)))
	}
	if !strings.HasSuffix(s, got) {
		t.Errorf("result is not a suffix of the input")
	}
}

func TestTruncateMultibyte(t *testing.T) {
	s := strings.Repeat("ü", 30)

	got := Truncate(s, 10)
	if n := len([]rune(got)); n != 10 {
		t.Errorf("rune length = %d, want 10", n)
	}
	if strings.Contains(got, "�") {
		t.Errorf("truncation split a rune: %q", got)
	}
}

func TestTruncateNoop(t *testing.T) {
	if got := Truncate("short", 100); got != "short" {
		t.Errorf("Truncate() = %q, want unchanged", got)
	}
	if got := Truncate("anything at all", 0); got != "anything at all" {
		t.Errorf("Truncate with max 0 should be a no-op, got %q", got)
	}
}
