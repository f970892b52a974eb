package pipeline

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"chat-guardian-be/pkg/guardian"
	"chat-guardian-be/pkg/memory"
)

type scriptedSearcher struct {
	results [][]memory.Document
	errs    []error
	calls   int
}

func (s *scriptedSearcher) Search(_ context.Context, _ string, _ int) ([]memory.Document, error) {
	i := s.calls
	s.calls++
	var docs []memory.Document
	var err error
	if i < len(s.results) {
		docs = s.results[i]
	}
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return docs, err
}

type fixedGenerator struct {
	reply string
	err   error
	calls int
}

func (g *fixedGenerator) Generate(_ context.Context, _ string, _ []guardian.Turn) (string, error) {
	g.calls++
	return g.reply, g.err
}

func newPipeline(s memory.Searcher, g ReplyGenerator) *Pipeline {
	return New(s, g, log.New(io.Discard, "", 0))
}

func relevantDocs() []memory.Document {
	return []memory.Document{
		{ID: "1", Label: "FAQ", URL: "https://ex.com/faq", Content: strings.Repeat("x", 200)},
		{ID: "2", Label: "Guide", URL: "https://ex.com/guide", Content: strings.Repeat("x", 200)},
	}
}

func acceptingSettings() guardian.Settings {
	s := guardian.DefaultSettings()
	s.MinQueryLength = 2
	s.MinSourceChar = 0
	return s
}

func TestShortMessageRejected(t *testing.T) {
	// Scenario: min_query_length=10, message "hi" -> REJECT_LENGTH with the
	// default message, generator never invoked.
	gen := &fixedGenerator{reply: "should not be called"}
	searcher := &scriptedSearcher{}
	p := newPipeline(searcher, gen)

	settings := guardian.DefaultSettings()
	settings.MinQueryLength = 10
	settings.DefaultMessage = "please write more"

	res, err := p.Run(context.Background(), Request{Message: "hi"}, settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Decision.Outcome != guardian.OutcomeRejectLength {
		t.Errorf("outcome = %s, want REJECT_LENGTH", res.Decision.Outcome)
	}
	if res.Reply != "please write more" {
		t.Errorf("reply = %q, want default message", res.Reply)
	}
	if gen.calls != 0 {
		t.Errorf("generator invoked %d times on a rejected turn", gen.calls)
	}
	if len(res.Sources) != 0 {
		t.Errorf("rejected turn carries sources: %v", res.Sources)
	}
}

func TestPanicModeShortCircuits(t *testing.T) {
	gen := &fixedGenerator{reply: "nope"}
	searcher := &scriptedSearcher{results: [][]memory.Document{relevantDocs()}}
	p := newPipeline(searcher, gen)

	settings := acceptingSettings()
	settings.PanicButtonEnabled = true
	settings.PanicButtonText = "under maintenance"

	res, err := p.Run(context.Background(), Request{Message: "any message at all"}, settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Reply != "under maintenance" {
		t.Errorf("reply = %q, want panic text", res.Reply)
	}
	if len(res.Sources) != 0 {
		t.Errorf("panic turn carries sources")
	}
	if searcher.calls != 0 {
		t.Errorf("panic mode hit the memory store")
	}
}

func TestAcceptedTurnCarriesSources(t *testing.T) {
	gen := &fixedGenerator{reply: "Here is what I found."}
	searcher := &scriptedSearcher{results: [][]memory.Document{relevantDocs()}}
	p := newPipeline(searcher, gen)

	res, err := p.Run(context.Background(), Request{Message: "tell me about faqs"}, acceptingSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Reply != "Here is what I found." {
		t.Errorf("reply = %q", res.Reply)
	}
	if len(res.Sources) != 2 {
		t.Fatalf("sources = %v, want 2", res.Sources)
	}
	if res.Sources[0].Label != "FAQ" || res.Sources[1].Label != "Guide" {
		t.Errorf("source order not preserved: %v", res.Sources)
	}
}

func TestNoSourcesMarkerBypassesAndStrips(t *testing.T) {
	// Scenario E: marker present -> empty source list even though memory
	// would return relevant documents.
	gen := &fixedGenerator{reply: "A direct answer."}
	searcher := &scriptedSearcher{results: [][]memory.Document{relevantDocs()}}
	p := newPipeline(searcher, gen)

	res, err := p.Run(context.Background(), Request{
		Message: "tell me something " + guardian.NoSourcesMarker,
	}, acceptingSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Decision.Bypass != guardian.BypassNoSourcesMarker {
		t.Errorf("bypass = %s, want NO_SOURCES_MARKER", res.Decision.Bypass)
	}
	if len(res.Sources) != 0 {
		t.Errorf("bypassed turn carries sources: %v", res.Sources)
	}
	if strings.Contains(res.Message, guardian.NoSourcesMarker) {
		t.Errorf("marker not stripped from message: %q", res.Message)
	}
	if searcher.calls != 0 {
		t.Errorf("bypassed turn hit the memory store")
	}
}

func TestDoublePassIntersects(t *testing.T) {
	gen := &fixedGenerator{reply: "An answer about faqs."}
	searcher := &scriptedSearcher{results: [][]memory.Document{
		relevantDocs(),
		{{ID: "1", Label: "FAQ", URL: "https://ex.com/faq", Content: strings.Repeat("x", 200)}},
	}}
	p := newPipeline(searcher, gen)

	settings := acceptingSettings()
	settings.DoublePass = true

	res, err := p.Run(context.Background(), Request{Message: "tell me about faqs"}, settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if searcher.calls != 2 {
		t.Fatalf("search calls = %d, want 2", searcher.calls)
	}
	if len(res.Sources) != 1 || res.Sources[0].Label != "FAQ" {
		t.Errorf("sources = %v, want intersection [FAQ]", res.Sources)
	}
}

func TestSecondPassFailureDegrades(t *testing.T) {
	gen := &fixedGenerator{reply: "An answer."}
	searcher := &scriptedSearcher{
		results: [][]memory.Document{relevantDocs(), nil},
		errs:    []error{nil, memory.ErrUnavailable},
	}
	p := newPipeline(searcher, gen)

	settings := acceptingSettings()
	settings.DoublePass = true

	res, err := p.Run(context.Background(), Request{Message: "tell me about faqs"}, settings)
	if err != nil {
		t.Fatalf("second pass failure must not fail the turn: %v", err)
	}
	if !res.SecondPassFailed {
		t.Errorf("SecondPassFailed not reported")
	}
	if len(res.Sources) != 2 {
		t.Errorf("sources = %v, want full pass-1 set", res.Sources)
	}
}

func TestMemoryUnavailableRejects(t *testing.T) {
	gen := &fixedGenerator{reply: "never"}
	searcher := &scriptedSearcher{errs: []error{memory.ErrUnavailable}}
	p := newPipeline(searcher, gen)

	settings := acceptingSettings()
	settings.DefaultMessage = "try later"

	res, err := p.Run(context.Background(), Request{Message: "tell me about faqs"}, settings)
	if err != nil {
		t.Fatalf("gate failures are reported on the result, not as errors: %v", err)
	}
	if !errors.Is(res.MemoryErr, memory.ErrUnavailable) {
		t.Errorf("MemoryErr = %v, want ErrUnavailable", res.MemoryErr)
	}
	if res.Reply != "try later" {
		t.Errorf("reply = %q, want default message", res.Reply)
	}
	if gen.calls != 0 {
		t.Errorf("generator invoked despite memory failure")
	}
}

func TestGeneratorErrorPropagates(t *testing.T) {
	genErr := errors.New("llm down")
	gen := &fixedGenerator{err: genErr}
	searcher := &scriptedSearcher{results: [][]memory.Document{relevantDocs()}}
	p := newPipeline(searcher, gen)

	_, err := p.Run(context.Background(), Request{Message: "tell me about faqs"}, acceptingSettings())
	if !errors.Is(err, genErr) {
		t.Errorf("err = %v, want generator error", err)
	}
}

func TestBypassedTurnSkipsLinkAnnotation(t *testing.T) {
	// A marker turn skips enrichment: the reply must not be rewritten even
	// when utm_source is configured and the reply carries a bare URL.
	gen := &fixedGenerator{reply: "Direct answer with https://ex.com/page inside."}
	searcher := &scriptedSearcher{results: [][]memory.Document{relevantDocs()}}
	p := newPipeline(searcher, gen)

	settings := acceptingSettings()
	settings.UTMSource = "assistant"

	res, err := p.Run(context.Background(), Request{
		Message: "tell me something " + guardian.NoSourcesMarker,
	}, settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Reply != "Direct answer with https://ex.com/page inside." {
		t.Errorf("bypassed reply was rewritten: %q", res.Reply)
	}
	if len(res.Sources) != 0 {
		t.Errorf("bypassed turn carries sources: %v", res.Sources)
	}
}

func TestUTMAnnotationAppliedEndToEnd(t *testing.T) {
	gen := &fixedGenerator{reply: "See https://ex.com/faq for details."}
	searcher := &scriptedSearcher{results: [][]memory.Document{relevantDocs()}}
	p := newPipeline(searcher, gen)

	settings := acceptingSettings()
	settings.UTMSource = "assistant"

	res, err := p.Run(context.Background(), Request{Message: "tell me about faqs"}, settings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range res.Sources {
		if !strings.Contains(s.URL, "utm_source=assistant") {
			t.Errorf("source %q not annotated", s.URL)
		}
	}
	if !strings.Contains(res.Reply, "utm_source=assistant") {
		t.Errorf("reply links not annotated: %q", res.Reply)
	}
}
