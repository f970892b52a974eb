// Package pipeline runs the full context gate and source enrichment flow for
// one conversational turn: query building, gating, reply generation, the
// optional second retrieval pass, source construction and link annotation.
package pipeline

import (
	"context"
	"log"

	"chat-guardian-be/pkg/guardian"
	"chat-guardian-be/pkg/guardian/gate"
	"chat-guardian-be/pkg/guardian/query"
	"chat-guardian-be/pkg/guardian/sources"
	"chat-guardian-be/pkg/guardian/utm"
	"chat-guardian-be/pkg/memory"
)

// ReplyGenerator produces the assistant's reply text for an accepted turn.
// The pipeline treats the reply as an opaque string.
type ReplyGenerator interface {
	Generate(ctx context.Context, message string, history []guardian.Turn) (string, error)
}

// Request is one turn's worth of input. Message is the raw user text;
// History holds the turns preceding it, oldest first.
type Request struct {
	Message     string
	History     []guardian.Turn
	FormActive  bool
	BrowserLang string
}

// Result is what the host attaches to the outgoing message.
type Result struct {
	Reply            string
	Sources          []guardian.Source
	Decision         guardian.Decision
	Message          string // user text after marker stripping
	SecondPassFailed bool
	MemoryErr        error // set when the gate hit an unreachable memory store
}

type Pipeline struct {
	searcher  memory.Searcher
	generator ReplyGenerator
	gate      *gate.Gate
	logger    *log.Logger
}

func New(searcher memory.Searcher, generator ReplyGenerator, logger *log.Logger) *Pipeline {
	return &Pipeline{
		searcher:  searcher,
		generator: generator,
		gate:      gate.New(searcher, logger),
		logger:    logger,
	}
}

// Run executes one synchronous turn. Rejections short-circuit reply
// generation; the decision's message is the reply in that case. A failing
// second pass degrades to single-pass sources and never rejects the turn.
func (p *Pipeline) Run(ctx context.Context, req Request, settings guardian.Settings) (*Result, error) {
	settings = settings.Normalized()

	message, markerPresent := guardian.StripNoSourcesMarker(req.Message)
	searchQuery := query.Build(message, req.History, settings)

	decision, gateErr := p.gate.Evaluate(ctx, gate.Input{
		Message:       message,
		Query:         searchQuery,
		FormActive:    req.FormActive,
		MarkerPresent: markerPresent,
		BrowserLang:   req.BrowserLang,
	}, settings)

	if decision.Rejected() {
		p.logger.Printf("[PIPELINE] turn rejected: %s", decision.Outcome)
		return &Result{
			Reply:     decision.Message,
			Sources:   []guardian.Source{},
			Decision:  decision,
			Message:   message,
			MemoryErr: gateErr,
		}, nil
	}

	reply, err := p.generator.Generate(ctx, message, req.History)
	if err != nil {
		return nil, err
	}

	var secondary []memory.Document
	secondPassRan := false
	secondPassFailed := false
	if settings.DoublePass && !decision.Bypassed() {
		secondPassRan = true
		secondQuery := query.Truncate(message+" "+reply, settings.MaxQueryLength)
		secondary, err = p.searcher.Search(ctx, secondQuery, settings.TopK)
		if err != nil {
			// The turn is already accepted and a reply exists; degrade to
			// the first pass instead of failing the turn.
			p.logger.Printf("[PIPELINE] second pass failed, using single-pass sources: %v", err)
			secondPassFailed = true
		}
	}

	sourceList := sources.Build(sources.Input{
		Primary:          decision.Candidates,
		Secondary:        secondary,
		SecondPassRan:    secondPassRan,
		SecondPassFailed: secondPassFailed,
		ReplyText:        reply,
		Bypassed:         decision.Bypassed(),
	}, settings)

	// Bypassed turns skip enrichment entirely: no sources were attached and
	// the reply goes out exactly as generated.
	if !decision.Bypassed() {
		sourceList = utm.AnnotateSources(sourceList, settings.UTMSource)
		reply = utm.AnnotateText(reply, settings.UTMSource)
	}

	return &Result{
		Reply:            reply,
		Sources:          sourceList,
		Decision:         decision,
		Message:          message,
		SecondPassFailed: secondPassFailed,
	}, nil
}
