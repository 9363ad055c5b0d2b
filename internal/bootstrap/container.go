package bootstrap

import (
	"context"
	"log"

	"ai-orchestra-be/internal/config"
	"ai-orchestra-be/internal/controller"
	"ai-orchestra-be/internal/handler"
	"ai-orchestra-be/internal/pkg/logger"
	"ai-orchestra-be/internal/repository/memory"
	"ai-orchestra-be/internal/repository/unitofwork"
	"ai-orchestra-be/internal/service"
	"ai-orchestra-be/internal/websocket"
	"ai-orchestra-be/pkg/events"
	"ai-orchestra-be/pkg/orchestration/dive"
	"ai-orchestra-be/pkg/orchestration/verify"
	"ai-orchestra-be/pkg/orchestration/work"
	"ai-orchestra-be/pkg/provider/factory"

	pktNats "ai-orchestra-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	OrchestratorController controller.IOrchestratorController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	StreamHandler *handler.StreamHandler
	WebSocketHub  *websocket.Hub
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

	// 2.5 Infrastructure
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

	// 3. Provider Registry
	registry := factory.NewRegistry(cfg.CredentialMap())
	log.Printf("[INFO] Provider registry initialized with %d providers", len(registry.List()))

	// 4. Orchestration Core
	store := service.NewOrchestrationStore(uowFactory)
	guard := memory.NewWorkflowGuardRepository()
	publisherService := service.NewPublisherService(cfg.App.EventTopic, pubSub)

	dispatcher := dive.NewDispatcher(store, registry, publisherService, sysLogger)
	verifier := verify.NewVerifier(store, registry, sysLogger)
	engine := work.NewEngine(store, registry, guard, publisherService, sysLogger)

	orchestratorService := service.NewOrchestratorService(
		uowFactory,
		store,
		registry,
		dispatcher,
		verifier,
		engine,
		sysLogger,
	)

	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.EventTopic,
		wsHub,
		natsPub,
	)

	// Durable audit trail of everything that crossed the NATS stream.
	if natsSub != nil {
		auditLogger := logger.NewIsolatedLogger("logs/event_audit.log")
		if err := natsSub.Subscribe("orchestra.>", "orchestra-audit", func(ctx context.Context, event events.Event) error {
			auditLogger.Info("EventAudit", event.EventType(), event.Payload())
			return nil
		}); err != nil {
			log.Printf("[WARN] Failed to start event audit subscriber: %v", err)
		}
	}

	streamHandler := handler.NewStreamHandler(wsHub, wsLogger)

	return &Container{
		OrchestratorController: controller.NewOrchestratorController(orchestratorService),
		ConsumerService:        consumerService,
		StreamHandler:          streamHandler,
		WebSocketHub:           wsHub,
	}
}
