package events

import "time"

// Event type codes published by the chat pipeline.
const (
	TypeTurnRejected       = "TURN_REJECTED"
	TypeMemoryUnavailable  = "MEMORY_UNAVAILABLE"
	TypeSecondPassDegraded = "SECOND_PASS_DEGRADED"
	TypeDocumentIngested   = "DOCUMENT_INGESTED"
	TypeSettingsUpdated    = "SETTINGS_UPDATED"
)

// NewTurnRejectedEvent records a gated turn. The outcome string is one of the
// pipeline's rejection outcomes.
func NewTurnRejectedEvent(sessionID, outcome string) Event {
	return BaseEvent{
		Type: TypeTurnRejected,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"outcome":    outcome,
		},
		OccurredAt: time.Now(),
	}
}

// NewMemoryUnavailableEvent records a failed knowledge-base lookup so
// operators can spot a degraded vector store.
func NewMemoryUnavailableEvent(sessionID, reason string) Event {
	return BaseEvent{
		Type: TypeMemoryUnavailable,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"reason":     reason,
		},
		OccurredAt: time.Now(),
	}
}

// NewSecondPassDegradedEvent records a confirmation search that failed and
// fell back to single-pass sources.
func NewSecondPassDegradedEvent(sessionID string) Event {
	return BaseEvent{
		Type: TypeSecondPassDegraded,
		Data: map[string]interface{}{
			"session_id": sessionID,
		},
		OccurredAt: time.Now(),
	}
}

// NewDocumentIngestedEvent records a knowledge-base document that finished
// chunking and embedding.
func NewDocumentIngestedEvent(documentID string, chunkCount int) Event {
	return BaseEvent{
		Type: TypeDocumentIngested,
		Data: map[string]interface{}{
			"document_id": documentID,
			"chunk_count": chunkCount,
		},
		OccurredAt: time.Now(),
	}
}

// NewSettingsUpdatedEvent records an admin settings change.
func NewSettingsUpdatedEvent(updatedBy string) Event {
	return BaseEvent{
		Type: TypeSettingsUpdated,
		Data: map[string]interface{}{
			"updated_by": updatedBy,
		},
		OccurredAt: time.Now(),
	}
}
