package contract

import (
	"context"

	"chat-guardian-be/internal/entity"
	"chat-guardian-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredChunk is one similarity hit joined with its parent document, so the
// caller can build a labeled source without a second query.
type ScoredChunk struct {
	Embedding     *entity.DocumentEmbedding
	DocumentTitle string
	DocumentUrl   string
	Similarity    float64
}

type DocumentEmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.DocumentEmbedding) error
	CreateBulk(ctx context.Context, embeddings []*entity.DocumentEmbedding) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentEmbedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*ScoredChunk, error)
}
