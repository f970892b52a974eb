package bootstrap

import (
	"context"
	"log"
	"time"

	"chat-guardian-be/internal/config"
	"chat-guardian-be/internal/controller"
	"chat-guardian-be/internal/handler"
	"chat-guardian-be/internal/pkg/logger"
	"chat-guardian-be/internal/repository/memory"
	"chat-guardian-be/internal/repository/unitofwork"
	"chat-guardian-be/internal/service"
	"chat-guardian-be/internal/websocket"
	"chat-guardian-be/pkg/embedding"
	"chat-guardian-be/pkg/embedding/jina"
	"chat-guardian-be/pkg/llm/factory"
	"chat-guardian-be/pkg/llm/gemini"
	"chat-guardian-be/pkg/transcribe"
	"chat-guardian-be/pkg/translate"

	pktNats "chat-guardian-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	DocumentController controller.IDocumentController
	SettingsController controller.ISettingsController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Event Stream
	ChatWsHandler      *handler.ChatWsHandler
	EventStreamHandler *handler.EventStreamHandler
	WebSocketHub       *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else if cfg.Ai.EmbeddingProvider == "jina" {
		embeddingProvider = jina.NewJinaProvider(cfg.Keys.Jina)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// Translation runs on its own lightweight model with a fallback for
	// overload errors; it degrades to a no-op without a Gemini key.
	var translator *translate.Translator
	var transcriber *transcribe.Transcriber
	if cfg.Keys.GoogleGemini != "" {
		translateProvider := gemini.NewGeminiProvider(
			cfg.Keys.GoogleGemini,
			cfg.Ai.TranslateModel,
			cfg.Ai.TranslateFallback,
		)
		translator = translate.New(translateProvider, log.Default())
		transcriber = transcribe.New(cfg.Keys.GoogleGemini)
	} else {
		log.Printf("[WARN] No Gemini API key: translation and audio transcription disabled")
	}

	// 4. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	formSessions := memory.NewFormSessionRepository(rdb, time.Duration(cfg.Guardian.FormSessionTTLHours)*time.Hour)
	settingsCache := memory.NewSettingsCache(time.Duration(cfg.Guardian.SettingsCacheSeconds) * time.Second)

	// WebSocket Hub
	wsHub := websocket.NewHub(rdb, sysLogger)
	go wsHub.Run()

	// 5. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Keys.IngestTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.IngestTopic,
		uowFactory,
		embeddingProvider,
		natsPub,
	)

	searcher := service.NewMemorySearchService(uowFactory, embeddingProvider, log.Default())

	settingsService := service.NewSettingsService(uowFactory, settingsCache, natsPub)
	chatService := service.NewChatService(
		uowFactory,
		searcher,
		llmProvider,
		settingsService,
		formSessions,
		transcriber,
		translator,
		natsPub,
	)
	documentService := service.NewDocumentService(uowFactory, publisherService)

	// Event stream worker relays NATS events to connected dashboards
	if natsSub != nil {
		eventStream := service.NewEventStreamService(natsSub, wsHub, sysLogger)
		go eventStream.Start()
	}

	eventStreamHandler := handler.NewEventStreamHandler(wsHub, sysLogger)
	chatWsHandler := handler.NewChatWsHandler(chatService, sysLogger)

	// 6. Controllers
	return &Container{
		ChatController:     controller.NewChatController(chatService),
		DocumentController: controller.NewDocumentController(documentService),
		SettingsController: controller.NewSettingsController(settingsService),

		ConsumerService: consumerService,

		ChatWsHandler:      chatWsHandler,
		EventStreamHandler: eventStreamHandler,
		WebSocketHub:       wsHub,
	}
}
