package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"chat-guardian-be/internal/constant"
	"chat-guardian-be/internal/dto"
	"chat-guardian-be/internal/entity"
	"chat-guardian-be/internal/repository/memory"
	"chat-guardian-be/internal/repository/specification"
	"chat-guardian-be/internal/repository/unitofwork"
	"chat-guardian-be/pkg/events"
	"chat-guardian-be/pkg/guardian"
	"chat-guardian-be/pkg/guardian/pipeline"
	"chat-guardian-be/pkg/llm"
	pkgMemory "chat-guardian-be/pkg/memory"
	pktNats "chat-guardian-be/pkg/nats"
	"chat-guardian-be/pkg/store"
	"chat-guardian-be/pkg/transcribe"
	"chat-guardian-be/pkg/translate"

	"github.com/google/uuid"
)

// IChatService defines the chat service interface
type IChatService interface {
	CreateSession(ctx context.Context, userId uuid.UUID, request *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error)
	GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	SendChat(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
	DeleteSession(ctx context.Context, userId uuid.UUID, request *dto.DeleteSessionRequest) error
	OpenForm(ctx context.Context, userId uuid.UUID, request *dto.OpenFormRequest) error
	CloseForm(ctx context.Context, userId uuid.UUID, request *dto.CloseFormRequest) error
}

// chatService orchestrates one conversational turn: settings snapshot, form
// bypass lookup, optional audio transcription, the gate/enrichment pipeline,
// rejection message translation and persistence of both sides of the turn.
type chatService struct {
	uowFactory      unitofwork.RepositoryFactory
	pipeline        *pipeline.Pipeline
	settingsService ISettingsService
	formSessions    *memory.FormSessionRepository
	transcriber     *transcribe.Transcriber
	translator      *translate.Translator
	eventPublisher  *pktNats.Publisher
	pipelineLogger  *log.Logger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	searcher pkgMemory.Searcher,
	llmProvider llm.LLMProvider,
	settingsService ISettingsService,
	formSessions *memory.FormSessionRepository,
	transcriber *transcribe.Transcriber,
	translator *translate.Translator,
	eventPublisher *pktNats.Publisher,
) IChatService {
	pipelineLogger := initPipelineLogger()

	return &chatService{
		uowFactory:      uowFactory,
		pipeline:        pipeline.New(searcher, newReplyGenerator(llmProvider), pipelineLogger),
		settingsService: settingsService,
		formSessions:    formSessions,
		transcriber:     transcriber,
		translator:      translator,
		eventPublisher:  eventPublisher,
		pipelineLogger:  pipelineLogger,
	}
}

func initPipelineLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "guardian.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[GUARDIAN] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

// replyGenerator adapts the LLM provider to the pipeline's generator contract.
type replyGenerator struct {
	provider llm.LLMProvider
}

func newReplyGenerator(provider llm.LLMProvider) *replyGenerator {
	return &replyGenerator{provider: provider}
}

func (g *replyGenerator) Generate(ctx context.Context, message string, history []guardian.Turn) (string, error) {
	msgs := make([]llm.Message, 0, len(history)+1)
	for _, t := range history {
		role := "user"
		if t.Role == constant.ChatMessageRoleModel {
			role = "assistant"
		}
		msgs = append(msgs, llm.Message{Role: role, Content: t.Text})
	}
	msgs = append(msgs, llm.Message{Role: "user", Content: message})
	return g.provider.Chat(ctx, msgs)
}

// CreateSession creates a new chat session with the initial greeting.
func (cs *chatService) CreateSession(ctx context.Context, userId uuid.UUID, request *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	chatSession := entity.ChatSession{
		Id:          uuid.New(),
		UserId:      userId,
		Title:       constant.DefaultSessionTitle,
		BrowserLang: request.BrowserLang,
		CreatedAt:   now,
	}

	greeting := entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          constant.ChatSessionGreeting,
		Role:          constant.ChatMessageRoleModel,
		ChatSessionId: chatSession.Id,
		Outcome:       guardian.OutcomeAccept.String(),
		CreatedAt:     now,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatSessionRepository().Create(ctx, &chatSession); err != nil {
		return nil, err
	}
	if err := uow.ChatMessageRepository().Create(ctx, &greeting); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return &dto.CreateSessionResponse{Id: chatSession.Id}, nil
}

// GetAllSessions retrieves all chat sessions owned by the user
func (cs *chatService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	chatSessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetAllSessionsResponse, 0, len(chatSessions))
	for _, s := range chatSessions {
		response = append(response, &dto.GetAllSessionsResponse{
			Id:        s.Id,
			Title:     s.Title,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		})
	}

	return response, nil
}

// GetChatHistory retrieves chat history for a session
func (cs *chatService) GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if _, err := cs.verifySession(ctx, uow, userId, sessionId); err != nil {
		return nil, err
	}

	chatMessages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	resp := make([]*dto.GetChatHistoryResponse, 0, len(chatMessages))
	for _, msg := range chatMessages {
		resp = append(resp, &dto.GetChatHistoryResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Chat:      msg.Chat,
			Outcome:   msg.Outcome,
			Sources:   sourcesToDTO(msg.Sources),
			CreatedAt: msg.CreatedAt,
		})
	}

	return resp, nil
}

// SendChat runs one turn through the guardian pipeline and persists both the
// user message and the assistant reply.
func (cs *chatService) SendChat(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	chatSession, err := cs.verifySession(ctx, uow, userId, request.ChatSessionId)
	if err != nil {
		return nil, err
	}

	settings := cs.settingsService.Snapshot(ctx)

	chatText := request.Chat
	if request.AudioData != "" {
		if !settings.HandleAudio || cs.transcriber == nil {
			return cs.respondAudioUnsupported(ctx, uow, chatSession, request)
		}
		transcript, err := cs.transcriber.Transcribe(ctx, request.AudioData)
		if err != nil {
			return nil, fmt.Errorf("transcribe audio: %w", err)
		}
		chatText = transcript
	}

	browserLang := request.BrowserLang
	if browserLang == "" {
		browserLang = chatSession.BrowserLang
	}

	formActive := false
	if cs.formSessions != nil {
		formSession, err := cs.formSessions.Get(ctx, request.ChatSessionId.String())
		if err != nil {
			cs.pipelineLogger.Printf("[WARN] form session lookup failed for %s: %v", request.ChatSessionId, err)
		} else {
			formActive = formSession != nil
		}
	}

	existing, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: request.ChatSessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	history := make([]guardian.Turn, 0, len(existing))
	for _, m := range existing {
		history = append(history, guardian.Turn{
			Role:      m.Role,
			Text:      m.Chat,
			CreatedAt: m.CreatedAt,
		})
	}

	result, err := cs.pipeline.Run(ctx, pipeline.Request{
		Message:     chatText,
		History:     history,
		FormActive:  formActive,
		BrowserLang: browserLang,
	}, settings)
	if err != nil {
		return nil, err
	}

	reply := result.Reply
	if result.Decision.Rejected() && cs.translator != nil {
		// Rejection messages are configured in one language; answer the user
		// in the language they wrote in.
		reply = cs.translator.MatchLanguage(ctx, reply, result.Message)
	}

	now := time.Now()
	userMessage := entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          result.Message,
		Role:          constant.ChatMessageRoleUser,
		ChatSessionId: request.ChatSessionId,
		CreatedAt:     now,
	}
	modelMessage := entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          reply,
		Role:          constant.ChatMessageRoleModel,
		ChatSessionId: request.ChatSessionId,
		Outcome:       result.Decision.Outcome.String(),
		Sources:       sourcesToEntity(result.Sources),
		CreatedAt:     now.Add(1 * time.Second),
	}

	// The only stored message so far is the greeting: this is the first real
	// user turn, so it names the session.
	updateTitle := len(existing) <= 1

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().Create(ctx, &userMessage); err != nil {
		return nil, err
	}
	if err := uow.ChatMessageRepository().Create(ctx, &modelMessage); err != nil {
		return nil, err
	}

	if updateTitle {
		chatSession.Title = sessionTitleFrom(result.Message)
		chatSession.UpdatedAt = &now
		if err := uow.ChatSessionRepository().Update(ctx, chatSession); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	cs.publishTurnEvents(ctx, request.ChatSessionId, result)

	return &dto.SendChatResponse{
		ChatSessionId:    request.ChatSessionId,
		ChatSessionTitle: chatSession.Title,
		Outcome:          result.Decision.Outcome.String(),
		Bypassed:         result.Decision.Bypassed(),
		Sent: &dto.SendChatResponseChat{
			Id:        userMessage.Id,
			Chat:      userMessage.Chat,
			Role:      userMessage.Role,
			CreatedAt: userMessage.CreatedAt,
		},
		Reply: &dto.SendChatResponseChat{
			Id:        modelMessage.Id,
			Chat:      modelMessage.Chat,
			Role:      modelMessage.Role,
			CreatedAt: modelMessage.CreatedAt,
			Sources:   sourcesToDTO(modelMessage.Sources),
		},
	}, nil
}

// DeleteSession removes a session and its messages
func (cs *chatService) DeleteSession(ctx context.Context, userId uuid.UUID, request *dto.DeleteSessionRequest) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if _, err := cs.verifySession(ctx, uow, userId, request.ChatSessionId); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, request.ChatSessionId); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, request.ChatSessionId); err != nil {
		return err
	}

	return uow.Commit()
}

// OpenForm marks a form as active for the session, bypassing the gate until
// the form is closed or its TTL expires.
func (cs *chatService) OpenForm(ctx context.Context, userId uuid.UUID, request *dto.OpenFormRequest) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if _, err := cs.verifySession(ctx, uow, userId, request.ChatSessionId); err != nil {
		return err
	}

	return cs.formSessions.Open(ctx, &store.FormSession{
		SessionID: request.ChatSessionId.String(),
		FormName:  request.FormName,
		OpenedAt:  time.Now(),
	})
}

// CloseForm ends the session's form bypass. Closing without an open form is
// a no-op.
func (cs *chatService) CloseForm(ctx context.Context, userId uuid.UUID, request *dto.CloseFormRequest) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if _, err := cs.verifySession(ctx, uow, userId, request.ChatSessionId); err != nil {
		return err
	}

	return cs.formSessions.Close(ctx, request.ChatSessionId.String())
}

// respondAudioUnsupported answers a voice message with a fixed reply when
// audio handling is disabled. The turn never reaches the gate.
func (cs *chatService) respondAudioUnsupported(ctx context.Context, uow unitofwork.UnitOfWork, chatSession *entity.ChatSession, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	userText := request.Chat
	if userText == "" {
		userText = "[voice message]"
	}

	reply := constant.AudioUnsupportedMessage
	if cs.translator != nil && request.Chat != "" {
		reply = cs.translator.MatchLanguage(ctx, reply, request.Chat)
	}

	now := time.Now()
	userMessage := entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          userText,
		Role:          constant.ChatMessageRoleUser,
		ChatSessionId: request.ChatSessionId,
		CreatedAt:     now,
	}
	modelMessage := entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          reply,
		Role:          constant.ChatMessageRoleModel,
		ChatSessionId: request.ChatSessionId,
		Outcome:       constant.ChatOutcomeAudioUnsupported,
		CreatedAt:     now.Add(1 * time.Second),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().Create(ctx, &userMessage); err != nil {
		return nil, err
	}
	if err := uow.ChatMessageRepository().Create(ctx, &modelMessage); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return &dto.SendChatResponse{
		ChatSessionId:    request.ChatSessionId,
		ChatSessionTitle: chatSession.Title,
		Outcome:          constant.ChatOutcomeAudioUnsupported,
		Sent: &dto.SendChatResponseChat{
			Id:        userMessage.Id,
			Chat:      userMessage.Chat,
			Role:      userMessage.Role,
			CreatedAt: userMessage.CreatedAt,
		},
		Reply: &dto.SendChatResponseChat{
			Id:        modelMessage.Id,
			Chat:      modelMessage.Chat,
			Role:      modelMessage.Role,
			CreatedAt: modelMessage.CreatedAt,
		},
	}, nil
}

func (cs *chatService) verifySession(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, sessionId uuid.UUID) (*entity.ChatSession, error) {
	chatSession, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if chatSession == nil {
		return nil, fmt.Errorf("session not found or access denied")
	}
	return chatSession, nil
}

func (cs *chatService) publishTurnEvents(ctx context.Context, sessionId uuid.UUID, result *pipeline.Result) {
	if cs.eventPublisher == nil {
		return
	}

	if result.Decision.Rejected() {
		if err := cs.eventPublisher.Publish(ctx, events.NewTurnRejectedEvent(sessionId.String(), result.Decision.Outcome.String())); err != nil {
			log.Printf("Warn: failed to publish turn rejected event: %v", err)
		}
	}
	if result.MemoryErr != nil {
		if err := cs.eventPublisher.Publish(ctx, events.NewMemoryUnavailableEvent(sessionId.String(), result.MemoryErr.Error())); err != nil {
			log.Printf("Warn: failed to publish memory unavailable event: %v", err)
		}
	}
	if result.SecondPassFailed {
		if err := cs.eventPublisher.Publish(ctx, events.NewSecondPassDegradedEvent(sessionId.String())); err != nil {
			log.Printf("Warn: failed to publish second pass degraded event: %v", err)
		}
	}
}

// sessionTitleFrom derives the session title from the first user message.
func sessionTitleFrom(chat string) string {
	const maxTitleLen = 80
	runes := []rune(chat)
	if len(runes) > maxTitleLen {
		return string(runes[:maxTitleLen]) + "..."
	}
	if chat == "" {
		return constant.DefaultSessionTitle
	}
	return chat
}

func sourcesToEntity(sources []guardian.Source) []entity.SourceRef {
	refs := make([]entity.SourceRef, 0, len(sources))
	for _, s := range sources {
		refs = append(refs, entity.SourceRef{Url: s.URL, Label: s.Label})
	}
	return refs
}

func sourcesToDTO(sources []entity.SourceRef) []dto.SourceDTO {
	if len(sources) == 0 {
		return nil
	}
	out := make([]dto.SourceDTO, 0, len(sources))
	for _, s := range sources {
		out = append(out, dto.SourceDTO{Url: s.Url, Label: s.Label})
	}
	return out
}
