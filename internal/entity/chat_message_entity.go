package entity

import (
	"time"

	"github.com/google/uuid"
)

// SourceRef is one enriched source attached to an assistant message.
type SourceRef struct {
	Url   string `json:"url"`
	Label string `json:"label"`
}

type ChatMessage struct {
	Id            uuid.UUID
	Chat          string
	Role          string
	ChatSessionId uuid.UUID
	// Outcome records the gate decision for assistant messages
	// (ACCEPT, REJECT_LENGTH, REJECT_NO_CONTEXT, REJECT_PANIC).
	Outcome   string
	Sources   []SourceRef
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
