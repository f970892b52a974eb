package memory

import (
	"context"
	"errors"
)

// ErrUnavailable signals that the declarative memory backend could not be
// reached. Callers must treat it as "no relevant context" towards the user
// while still logging and reporting it to operators.
var ErrUnavailable = errors.New("memory store unavailable")

// Document is a single candidate returned by a similarity search.
type Document struct {
	ID      string  `json:"id"`
	Label   string  `json:"label"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float32 `json:"score"`
}

// Searcher is the narrow contract the gate and the source builder consume.
// Implementations wrap the vector store; transport or backend failures are
// reported as errors wrapping ErrUnavailable, never swallowed.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]Document, error)
}
