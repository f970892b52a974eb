package entity

import (
	"time"

	"github.com/google/uuid"
)

// KnowledgeDocument is one page of the knowledge base. Title doubles as the
// source label shown to users; Url is where the source points.
type KnowledgeDocument struct {
	Id        uuid.UUID
	Title     string
	Url       string
	Content   string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
