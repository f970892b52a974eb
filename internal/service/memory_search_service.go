package service

import (
	"context"
	"fmt"
	"log"

	"chat-guardian-be/internal/repository/unitofwork"
	"chat-guardian-be/pkg/embedding"
	"chat-guardian-be/pkg/memory"
)

// similarityThreshold filters out chunks whose cosine similarity to the query
// is too low to count as relevant context.
const similarityThreshold = 0.5

// memorySearchService backs the pipeline's memory.Searcher contract with the
// pgvector store: embed the query, run a similarity search, and surface each
// hit with its parent document's title and URL.
type memorySearchService struct {
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	logger            *log.Logger
}

func NewMemorySearchService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	logger *log.Logger,
) memory.Searcher {
	return &memorySearchService{
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		logger:            logger,
	}
}

func (ms *memorySearchService) Search(ctx context.Context, query string, topK int) ([]memory.Document, error) {
	res, err := ms.embeddingProvider.Generate(query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", memory.ErrUnavailable, err)
	}

	uow := ms.uowFactory.NewUnitOfWork(ctx)
	chunks, err := uow.DocumentEmbeddingRepository().SearchSimilarWithScore(ctx, res.Embedding.Values, topK, similarityThreshold)
	if err != nil {
		return nil, fmt.Errorf("%w: similarity search: %v", memory.ErrUnavailable, err)
	}

	ms.logger.Printf("[SEARCH] query length %d returned %d chunks", len(query), len(chunks))

	docs := make([]memory.Document, 0, len(chunks))
	for _, c := range chunks {
		docs = append(docs, memory.Document{
			ID:      c.Embedding.Id.String(),
			Label:   c.DocumentTitle,
			URL:     c.DocumentUrl,
			Content: c.Embedding.Chunk,
			Score:   float32(c.Similarity),
		})
	}
	return docs, nil
}
