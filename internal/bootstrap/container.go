package bootstrap

import (
	"context"
	"log"
	"time"

	"ai-research-be/internal/config"
	"ai-research-be/internal/controller"
	"ai-research-be/internal/dto"
	"ai-research-be/internal/handler"
	"ai-research-be/internal/pkg/logger"
	"ai-research-be/internal/pkg/mailer"
	"ai-research-be/internal/repository/memory"
	"ai-research-be/internal/repository/unitofwork"
	"ai-research-be/internal/service"
	"ai-research-be/internal/websocket"
	"ai-research-be/pkg/agent/critic"
	"ai-research-be/pkg/agent/executor"
	"ai-research-be/pkg/agent/researcher"
	"ai-research-be/pkg/agent/summarizer"
	"ai-research-be/pkg/llm/factory"
	"ai-research-be/pkg/search"
	"ai-research-be/pkg/store"

	pktNats "ai-research-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Topic for finished sessions waiting to be persisted.
const archiveTopicName = "ARCHIVE_RESEARCH_SESSION"

type Container struct {
	// Controllers
	ResearchController controller.IResearchController

	// Background Services (Exposed for main.go to run)
	ArchiverService service.IArchiverService

	// WebSockets & Notification
	StreamHandler *handler.ResearchStreamHandler
	WebSocketHub  *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Pipeline Components
	// Search provider based on Config
	var searchProvider search.Provider
	if cfg.Ai.SearchProvider == "duckduckgo" || cfg.Keys.Tavily == "" {
		searchProvider = search.NewDuckDuckGo()
		log.Printf("[INFO] Using Search Provider: DUCKDUCKGO")
	} else {
		searchProvider = search.NewTavily(cfg.Keys.Tavily, "basic")
		log.Printf("[INFO] Using Search Provider: TAVILY")
	}
	cachedSearch := search.NewCached(searchProvider, 30*time.Minute)

	// LLM Providers based on Config. The critic runs on a smaller model to
	// keep evaluation passes cheap.
	apiKey := cfg.Keys.Groq
	if cfg.Ai.LLMProvider == "openai" {
		apiKey = cfg.Keys.OpenAI
	}

	summarizerLLM, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		providerBaseURL(cfg),
		apiKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	criticLLM, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.CriticModel,
		providerBaseURL(cfg),
		apiKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Critic LLM Provider: %v", err)
	}

	// The pipeline is useless without a reachable generation endpoint, so
	// refuse to start rather than degrade every session.
	if err := factory.SelfTest(context.Background(), summarizerLLM, 3); err != nil {
		log.Fatalf("[FATAL] LLM Provider connectivity check failed: %v", err)
	}
	if err := factory.SelfTest(context.Background(), criticLLM, 3); err != nil {
		log.Fatalf("[FATAL] Critic LLM Provider connectivity check failed: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s / %s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel, cfg.Ai.CriticModel)

	agentCfg := cfg.Pipeline.Agent()
	pipelineLog := log.Default()

	exec := executor.New(
		researcher.NewResearcher(cachedSearch, summarizerLLM, agentCfg, pipelineLog),
		summarizer.NewSummarizer(summarizerLLM, agentCfg, pipelineLog),
		critic.NewCritic(criticLLM, agentCfg, pipelineLog),
		agentCfg,
		pipelineLog,
	)

	// Initialize In-Memory Session Storage
	sessionRepo := memory.NewSessionRepository()

	// 3.5 Infrastructure
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

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/stream.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// Per-phase streaming so the dashboard sees every pipeline step, not
	// just the cycle boundaries.
	exec.SetPhaseCallback(func(phase string, session *store.ResearchSession) {
		wsHub.Send(session.ID, dto.StepEvent{
			SessionId: session.ID,
			Phase:     phase,
			Decision:  session.Decision,
			LoopCount: session.LoopCount,
			Summary:   session.Summary,
		})
	})

	// 4. Services
	publisherService := service.NewPublisherService(archiveTopicName, pubSub)
	archiverService := service.NewArchiverService(pubSub, archiveTopicName, uowFactory)

	var eventPublisher service.EventPublisher
	if natsPub != nil {
		eventPublisher = natsPub
	}

	researchService := service.NewResearchService(
		exec,
		agentCfg,
		sessionRepo,
		uowFactory,
		publisherService,
		eventPublisher,
		wsHub,
		sysLogger,
	)

	// Notification worker (NATS consumer)
	if natsSub != nil {
		notifService := service.NewNotificationService(natsSub, wsHub, emailService, cfg.SMTP.Email, wsLogger)
		go notifService.Start()
	}

	// Handler
	streamHandler := handler.NewResearchStreamHandler(wsHub, wsLogger)

	// 5. Controllers
	return &Container{
		ResearchController: controller.NewResearchController(researchService),
		ArchiverService:    archiverService,
		StreamHandler:      streamHandler,
		WebSocketHub:       wsHub,
	}
}

func providerBaseURL(cfg *config.Config) string {
	if cfg.Ai.LLMProvider == "ollama" {
		return cfg.Ai.OllamaBaseURL
	}
	return cfg.Ai.OpenAIBaseURL
}
