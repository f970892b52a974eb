package unitofwork

import (
	"context"

	"chat-guardian-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
	KnowledgeDocumentRepository() contract.KnowledgeDocumentRepository
	DocumentEmbeddingRepository() contract.DocumentEmbeddingRepository
	GuardianSettingRepository() contract.GuardianSettingRepository
}
