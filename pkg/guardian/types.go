package guardian

import (
	"time"

	"chat-guardian-be/pkg/memory"
)

// Outcome is the gate's verdict for a single turn.
type Outcome int

const (
	OutcomeAccept Outcome = iota
	OutcomeRejectLength
	OutcomeRejectNoContext
	OutcomeRejectPanic
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccept:
		return "ACCEPT"
	case OutcomeRejectLength:
		return "REJECT_LENGTH"
	case OutcomeRejectNoContext:
		return "REJECT_NO_CONTEXT"
	case OutcomeRejectPanic:
		return "REJECT_PANIC"
	default:
		return "UNKNOWN"
	}
}

// BypassReason tags a turn that skips gating and source enrichment.
type BypassReason int

const (
	BypassNone BypassReason = iota
	BypassActiveForm
	BypassNoSourcesMarker
)

func (b BypassReason) String() string {
	switch b {
	case BypassActiveForm:
		return "ACTIVE_FORM"
	case BypassNoSourcesMarker:
		return "NO_SOURCES_MARKER"
	default:
		return "NONE"
	}
}

// Decision is the full result of the gate evaluation. Message is the
// user-facing text for rejections; Candidates carries the retrieved set
// forward on accept so the source builder never re-queries memory.
type Decision struct {
	Outcome    Outcome
	Message    string
	Bypass     BypassReason
	Candidates []memory.Document
}

// Rejected reports whether the turn must short-circuit reply generation.
func (d Decision) Rejected() bool {
	return d.Outcome != OutcomeAccept
}

// Bypassed reports whether gating and enrichment were skipped for this turn.
func (d Decision) Bypassed() bool {
	return d.Bypass != BypassNone
}

// Source is a (url, label) citation pair attached to an outgoing message.
// Logical identity for deduplication is the label.
type Source struct {
	URL   string `json:"url"`
	Label string `json:"label"`
}

// Turn is one recorded conversation entry, immutable once appended.
type Turn struct {
	Role      string
	Text      string
	CreatedAt time.Time
}
