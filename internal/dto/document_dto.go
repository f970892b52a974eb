package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateDocumentRequest struct {
	Title   string `json:"title" validate:"required,max=500"`
	Url     string `json:"url" validate:"omitempty,url"`
	Content string `json:"content" validate:"required"`
}

type CreateDocumentResponse struct {
	Id uuid.UUID `json:"id"`
}

type GetDocumentResponse struct {
	Id         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Url        string     `json:"url"`
	ChunkCount int64      `json:"chunk_count"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

type DeleteDocumentRequest struct {
	DocumentId uuid.UUID `json:"document_id" validate:"required"`
}

// PublishIngestDocumentMessage is the internal pub/sub payload that triggers
// chunking and embedding for a document.
type PublishIngestDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
}
