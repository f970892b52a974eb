package gate

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"chat-guardian-be/pkg/guardian"
	"chat-guardian-be/pkg/memory"
)

type fakeSearcher struct {
	docs []memory.Document
	err  error

	calls int
}

func (f *fakeSearcher) Search(_ context.Context, _ string, _ int) ([]memory.Document, error) {
	f.calls++
	return f.docs, f.err
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func baseSettings() guardian.Settings {
	s := guardian.DefaultSettings()
	s.MinQueryLength = 10
	s.MaxQueryLen = 500
	s.DefaultMessage = "default"
	s.PanicButtonText = "maintenance"
	return s
}

func someDocs() []memory.Document {
	return []memory.Document{
		{ID: "1", Label: "FAQ", URL: "https://ex.com/faq", Content: "some content"},
	}
}

func TestPanicOutranksEverything(t *testing.T) {
	searcher := &fakeSearcher{docs: someDocs()}
	g := New(searcher, discardLogger())

	settings := baseSettings()
	settings.PanicButtonEnabled = true

	inputs := []Input{
		{Message: "a perfectly reasonable question", Query: "a perfectly reasonable question"},
		{Message: ""},
		{Message: "hi", FormActive: true},
		{Message: "question", MarkerPresent: true},
	}

	for _, in := range inputs {
		d, err := g.Evaluate(context.Background(), in, settings)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d.Outcome != guardian.OutcomeRejectPanic {
			t.Errorf("outcome = %s, want REJECT_PANIC", d.Outcome)
		}
		if d.Message != "maintenance" {
			t.Errorf("message = %q, want panic text", d.Message)
		}
	}

	if searcher.calls != 0 {
		t.Errorf("panic mode performed %d memory lookups, want 0", searcher.calls)
	}
}

func TestBypassSkipsSearch(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want guardian.BypassReason
	}{
		{"active form", Input{Message: "hi", FormActive: true}, guardian.BypassActiveForm},
		{"no-sources marker", Input{Message: "hi", MarkerPresent: true}, guardian.BypassNoSourcesMarker},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := &fakeSearcher{}
			g := New(searcher, discardLogger())

			d, err := g.Evaluate(context.Background(), tt.in, baseSettings())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Outcome != guardian.OutcomeAccept {
				t.Errorf("outcome = %s, want ACCEPT", d.Outcome)
			}
			if d.Bypass != tt.want {
				t.Errorf("bypass = %s, want %s", d.Bypass, tt.want)
			}
			if searcher.calls != 0 {
				t.Errorf("bypass performed a memory lookup")
			}
		})
	}
}

func TestLengthRejection(t *testing.T) {
	tests := []struct {
		name    string
		message string
		maxLen  int
		want    guardian.Outcome
	}{
		{"too short", "hi", 500, guardian.OutcomeRejectLength},
		{"exactly minimum", "1234567890", 500, guardian.OutcomeAccept},
		{"too long", longMessage(501), 500, guardian.OutcomeRejectLength},
		{"max disabled", longMessage(5000), 0, guardian.OutcomeAccept},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(&fakeSearcher{docs: someDocs()}, discardLogger())
			settings := baseSettings()
			settings.MaxQueryLen = tt.maxLen

			d, err := g.Evaluate(context.Background(), Input{Message: tt.message, Query: tt.message}, settings)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Outcome != tt.want {
				t.Errorf("outcome = %s, want %s", d.Outcome, tt.want)
			}
			if d.Outcome == guardian.OutcomeRejectLength && d.Message != "default" {
				t.Errorf("rejection message = %q, want default", d.Message)
			}
		})
	}
}

func TestContextRejection(t *testing.T) {
	g := New(&fakeSearcher{}, discardLogger())

	d, err := g.Evaluate(context.Background(), Input{
		Message: "a long enough question about nothing",
		Query:   "a long enough question about nothing",
	}, baseSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Outcome != guardian.OutcomeRejectNoContext {
		t.Errorf("outcome = %s, want REJECT_NO_CONTEXT", d.Outcome)
	}
}

func TestAcceptRetainsCandidates(t *testing.T) {
	g := New(&fakeSearcher{docs: someDocs()}, discardLogger())

	d, err := g.Evaluate(context.Background(), Input{
		Message: "a long enough question about faqs",
		Query:   "a long enough question about faqs",
	}, baseSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Outcome != guardian.OutcomeAccept {
		t.Fatalf("outcome = %s, want ACCEPT", d.Outcome)
	}
	if len(d.Candidates) != 1 || d.Candidates[0].Label != "FAQ" {
		t.Errorf("candidates not retained: %+v", d.Candidates)
	}
}

func TestMemoryFailureRejectsAndSurfaces(t *testing.T) {
	g := New(&fakeSearcher{err: memory.ErrUnavailable}, discardLogger())

	d, err := g.Evaluate(context.Background(), Input{
		Message: "a long enough question about faqs",
		Query:   "a long enough question about faqs",
	}, baseSettings())
	if !errors.Is(err, memory.ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
	if d.Outcome != guardian.OutcomeRejectNoContext {
		t.Errorf("outcome = %s, want REJECT_NO_CONTEXT", d.Outcome)
	}
	if d.Message != "default" {
		t.Errorf("message = %q, want default", d.Message)
	}
}

func TestLocalizedRejectionMessage(t *testing.T) {
	g := New(&fakeSearcher{}, discardLogger())

	settings := baseSettings()
	settings.DefaultMessages = map[string]string{"it": "spiacente"}

	d, err := g.Evaluate(context.Background(), Input{Message: "ciao", BrowserLang: "it-IT"}, settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Message != "spiacente" {
		t.Errorf("message = %q, want settings override for it", d.Message)
	}
}

func longMessage(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'x'
	}
	return string(b)
}
