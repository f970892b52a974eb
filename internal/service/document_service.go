package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"chat-guardian-be/internal/dto"
	"chat-guardian-be/internal/entity"
	"chat-guardian-be/internal/repository/specification"
	"chat-guardian-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IDocumentService interface {
	CreateDocument(ctx context.Context, request *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error)
	GetAllDocuments(ctx context.Context) ([]*dto.GetDocumentResponse, error)
	DeleteDocument(ctx context.Context, request *dto.DeleteDocumentRequest) error
	ReingestDocument(ctx context.Context, documentId uuid.UUID) error
}

// documentService manages the knowledge base. Writes publish an ingest
// message; chunking and embedding happen asynchronously in the consumer.
type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
	}
}

func (ds *documentService) CreateDocument(ctx context.Context, request *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	document := entity.KnowledgeDocument{
		Id:        uuid.New(),
		Title:     request.Title,
		Url:       request.Url,
		Content:   request.Content,
		CreatedAt: time.Now(),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.KnowledgeDocumentRepository().Create(ctx, &document); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if err := ds.publishIngest(ctx, document.Id); err != nil {
		return nil, err
	}

	return &dto.CreateDocumentResponse{Id: document.Id}, nil
}

func (ds *documentService) GetAllDocuments(ctx context.Context) ([]*dto.GetDocumentResponse, error) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	documents, err := uow.KnowledgeDocumentRepository().FindAll(ctx,
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetDocumentResponse, 0, len(documents))
	for _, d := range documents {
		chunkCount, err := uow.DocumentEmbeddingRepository().Count(ctx,
			specification.ByDocumentID{DocumentID: d.Id},
		)
		if err != nil {
			return nil, err
		}
		response = append(response, &dto.GetDocumentResponse{
			Id:         d.Id,
			Title:      d.Title,
			Url:        d.Url,
			ChunkCount: chunkCount,
			CreatedAt:  d.CreatedAt,
			UpdatedAt:  d.UpdatedAt,
		})
	}

	return response, nil
}

func (ds *documentService) DeleteDocument(ctx context.Context, request *dto.DeleteDocumentRequest) error {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.KnowledgeDocumentRepository().FindOne(ctx,
		specification.ByID{ID: request.DocumentId},
	)
	if err != nil {
		return err
	}
	if document == nil {
		return fmt.Errorf("document not found")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentEmbeddingRepository().DeleteByDocumentId(ctx, request.DocumentId); err != nil {
		return err
	}
	if err := uow.KnowledgeDocumentRepository().Delete(ctx, request.DocumentId); err != nil {
		return err
	}

	return uow.Commit()
}

// ReingestDocument re-publishes the ingest message, rebuilding the
// document's embeddings from its current content.
func (ds *documentService) ReingestDocument(ctx context.Context, documentId uuid.UUID) error {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.KnowledgeDocumentRepository().FindOne(ctx,
		specification.ByID{ID: documentId},
	)
	if err != nil {
		return err
	}
	if document == nil {
		return fmt.Errorf("document not found")
	}

	return ds.publishIngest(ctx, documentId)
}

func (ds *documentService) publishIngest(ctx context.Context, documentId uuid.UUID) error {
	payload := dto.PublishIngestDocumentMessage{DocumentId: documentId}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return ds.publisherService.Publish(ctx, payloadJson)
}
