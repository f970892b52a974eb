// Package gate decides whether the assistant is allowed to produce a
// substantive answer for a turn.
package gate

import (
	"context"
	"fmt"
	"log"
	"unicode/utf8"

	"chat-guardian-be/pkg/guardian"
	"chat-guardian-be/pkg/memory"
)

// Input carries everything the gate needs for one evaluation. Message is the
// current user text with the no-sources marker already stripped; Query is the
// history-augmented search query.
type Input struct {
	Message       string
	Query         string
	FormActive    bool
	MarkerPresent bool
	BrowserLang   string
}

// Gate evaluates the accept/reject rules in a fixed order against the
// injected memory searcher.
type Gate struct {
	searcher memory.Searcher
	logger   *log.Logger
}

func New(searcher memory.Searcher, logger *log.Logger) *Gate {
	return &Gate{searcher: searcher, logger: logger}
}

// Evaluate applies the rules in order: panic, bypass, length, context.
//
// A memory failure is surfaced through the returned error so the caller can
// log and report it; the accompanying Decision still rejects the turn with
// the default message, since an unreachable knowledge base is
// indistinguishable from "no relevant context" for the user.
func (g *Gate) Evaluate(ctx context.Context, in Input, settings guardian.Settings) (guardian.Decision, error) {
	// Panic outranks everything, including bypass, and must not incur a
	// memory lookup.
	if settings.PanicButtonEnabled {
		return guardian.Decision{
			Outcome: guardian.OutcomeRejectPanic,
			Message: settings.PanicButtonText,
		}, nil
	}

	if in.FormActive {
		return guardian.Decision{Outcome: guardian.OutcomeAccept, Bypass: guardian.BypassActiveForm}, nil
	}
	if in.MarkerPresent {
		return guardian.Decision{Outcome: guardian.OutcomeAccept, Bypass: guardian.BypassNoSourcesMarker}, nil
	}

	defaultMsg := guardian.SelectDefaultMessage(settings, in.BrowserLang)

	// Length bounds apply to the current message, not the augmented query.
	msgLen := utf8.RuneCountInString(in.Message)
	if msgLen < settings.MinQueryLength {
		return guardian.Decision{Outcome: guardian.OutcomeRejectLength, Message: defaultMsg}, nil
	}
	if settings.MaxQueryLen > 0 && msgLen > settings.MaxQueryLen {
		return guardian.Decision{Outcome: guardian.OutcomeRejectLength, Message: defaultMsg}, nil
	}

	candidates, err := g.searcher.Search(ctx, in.Query, settings.TopK)
	if err != nil {
		g.logger.Printf("[GATE] memory search failed: %v", err)
		return guardian.Decision{
			Outcome: guardian.OutcomeRejectNoContext,
			Message: defaultMsg,
		}, fmt.Errorf("gate memory search: %w", err)
	}

	if len(candidates) == 0 {
		return guardian.Decision{Outcome: guardian.OutcomeRejectNoContext, Message: defaultMsg}, nil
	}

	return guardian.Decision{Outcome: guardian.OutcomeAccept, Candidates: candidates}, nil
}
