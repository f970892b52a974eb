package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByDocumentID struct {
	DocumentID uuid.UUID
}

func (s ByDocumentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentID)
}

type ByURL struct {
	URL string
}

func (s ByURL) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("url = ?", s.URL)
}
