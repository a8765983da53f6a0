package bootstrap

import (
	"log"

	"ai-guidance-be/internal/config"
	"ai-guidance-be/internal/controller"
	"ai-guidance-be/internal/pkg/logger"
	"ai-guidance-be/internal/repository/memory"
	"ai-guidance-be/internal/service"
	"ai-guidance-be/pkg/llm/factory"
	"ai-guidance-be/pkg/retrieval/httpapi"

	pktNats "ai-guidance-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Container struct {
	// Controllers
	GuidanceController controller.IGuidanceController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Exposed for graceful shutdown
	SysLogger *logger.ZapLogger
	NatsPub   *pktNats.Publisher
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. External Providers
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GeminiAPIKey,
	)
	if err != nil {
		log.Printf("[WARN] LLM provider unavailable, falling back to template narratives: %v", err)
		llmProvider = nil
	} else {
		log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	}

	retriever := httpapi.NewHTTPProvider(cfg.Ai.RetrievalURL, cfg.Guidance.RetrievalTimeout)
	log.Printf("[INFO] Using Retrieval Backend: %s", cfg.Ai.RetrievalURL)

	// In-memory conversation store: TTL eviction plus janitor sweep
	conversationRepo := memory.NewConversationRepository(
		cfg.Guidance.SessionTTL,
		cfg.Guidance.SweepInterval,
		cfg.Guidance.MaxTurns,
	)

	// NATS (best effort: guidance works without the external bus)
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	// 4. Services
	publisherService := service.NewPublisherService(cfg.Ai.TurnEventTopic, pubSub)

	analyticsLog := logger.NewIsolatedLogger("logs/turn_analytics.log")
	consumerService := service.NewConsumerService(pubSub, cfg.Ai.TurnEventTopic, analyticsLog)

	guidanceService := service.NewGuidanceService(
		cfg,
		llmProvider,      // Injected
		retriever,        // Injected
		conversationRepo, // Injected
		publisherService,
		natsPub,
	)

	// 5. Controllers
	return &Container{
		GuidanceController: controller.NewGuidanceController(guidanceService),
		ConsumerService:    consumerService,
		SysLogger:          sysLogger,
		NatsPub:            natsPub,
	}
}
