package bootstrap

import (
	"context"
	"errors"

	"kisansetu-be/internal/config"
	"kisansetu-be/internal/controller"
	"kisansetu-be/internal/pkg/logger"
	"kisansetu-be/internal/repository/memory"
	"kisansetu-be/internal/repository/unitofwork"
	"kisansetu-be/internal/service"
	"kisansetu-be/internal/websocket"
	"kisansetu-be/pkg/advisory/voice"
	"kisansetu-be/pkg/events"
	"kisansetu-be/pkg/llm"
	"kisansetu-be/pkg/llm/factory"
	"kisansetu-be/pkg/llm/huggingface"

	pktNats "kisansetu-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const module = "BOOTSTRAP"

// auditSubject matches every advisory event on the durable stream.
const auditSubject = "events.advisory.>"

type Container struct {
	// Controllers
	AdvisoryController  controller.IAdvisoryController
	VoiceController     controller.IVoiceController
	ProfileController   controller.IProfileController
	LocationController  controller.ILocationController
	DiseaseController   controller.IDiseaseController
	WebSocketController controller.IWebSocketController
	HealthController    controller.IHealthController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	WebSocketHub    *websocket.Hub

	Logger *logger.ZapLogger

	natsSub *pktNats.Subscriber
	closers []func()
}

func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config, sysLogger *logger.ZapLogger) *Container {
	c := &Container{Logger: sysLogger}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sessionRepo := memory.NewSessionRepositoryWithTTL(cfg.Advisory.SessionTTL, cfg.Advisory.SessionTTL/6)

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	publishers := events.Fanout{events.NewWatermillPublisher(pubSub, events.InProcessTopic)}

	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
	if err != nil {
		sysLogger.Warn(module, "Failed to connect to NATS Publisher", map[string]interface{}{"error": err.Error()})
	} else {
		publishers = append(publishers, natsPub)
		c.closers = append(c.closers, natsPub.Close)
	}

	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
	if err != nil {
		sysLogger.Warn(module, "Failed to connect to NATS Subscriber", map[string]interface{}{"error": err.Error()})
	} else {
		c.natsSub = natsSub
		c.closers = append(c.closers, natsSub.Close)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		sysLogger.Warn(module, "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		sysLogger.Warn(module, "Failed to connect to Redis, running single instance", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		rdb = nil
	} else {
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger(cfg.App.WsLogFilePath)
	wsHub := websocket.NewHub(rdb, wsLogger)
	c.WebSocketHub = wsHub

	// 3. Model providers
	llmProvider := newLLMProvider(ctx, cfg, sysLogger)
	audioProvider := newAudioProvider(ctx, cfg, sysLogger)
	classifier := huggingface.NewHuggingFaceProvider(cfg.Keys.HuggingFace, cfg.Ai.LLMBaseURL, "").
		WithInferenceURL(cfg.Ai.HFInferenceURL)

	// 4. Services
	locationService := service.NewLocationService(cfg.Geo, sysLogger)
	profileService := service.NewProfileService(uowFactory, publishers, cfg.App.JWTTTL, cfg.Geo.NearbyRadiusKm, sysLogger)
	homeService := service.NewHomeService(profileService, locationService, cfg.Geo, sysLogger)
	advisoryService := service.NewAdvisoryService(sessionRepo, profileService, llmProvider, wsHub, publishers, *cfg, sysLogger)
	voiceService := service.NewVoiceService(
		sessionRepo,
		audioProvider,
		func(sessionID string) voice.Speaker { return websocket.NewSpeechRelay(wsHub, sessionID) },
		wsHub,
		publishers,
		cfg.Voice,
		sysLogger,
	)
	diseaseService := service.NewDiseaseService(classifier, cfg.Ai.HFDiseaseModel, llmProvider, sysLogger)
	c.ConsumerService = service.NewConsumerService(pubSub, events.InProcessTopic, locationService, sysLogger)

	// 5. Controllers
	c.AdvisoryController = controller.NewAdvisoryController(advisoryService)
	c.VoiceController = controller.NewVoiceController(voiceService)
	c.ProfileController = controller.NewProfileController(profileService)
	c.LocationController = controller.NewLocationController(locationService, homeService)
	c.DiseaseController = controller.NewDiseaseController(diseaseService)
	c.WebSocketController = controller.NewWebSocketController(wsHub)
	c.HealthController = controller.NewHealthController(healthChecks(db, rdb))

	return c
}

// Start runs the hub and the event consumers until ctx ends.
func (c *Container) Start(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)

	if err := c.ConsumerService.Consume(ctx); err != nil {
		return err
	}

	if c.natsSub != nil {
		if err := c.natsSub.Subscribe(ctx, auditSubject, "advisory-audit", c.ConsumerService.Audit); err != nil {
			c.Logger.Warn(module, "Audit subscription failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return nil
}

func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

func newLLMProvider(ctx context.Context, cfg *config.Config, log logger.ILogger) llm.LLMProvider {
	p, err := factory.NewLLMProvider(ctx, LLMSettings(cfg, cfg.Ai.LLMProvider, cfg.Ai.LLMModel))
	if err != nil {
		log.Error(module, "LLM provider unavailable, answers will be apologies", map[string]interface{}{
			"provider": cfg.Ai.LLMProvider,
			"error":    err.Error(),
		})
		return nil
	}
	log.Info(module, "Using LLM provider", map[string]interface{}{"provider": cfg.Ai.LLMProvider, "model": cfg.Ai.LLMModel})
	return p
}

func newAudioProvider(ctx context.Context, cfg *config.Config, log logger.ILogger) llm.AudioProvider {
	p, err := factory.NewAudioProvider(ctx, LLMSettings(cfg, cfg.Ai.AudioProvider, cfg.Ai.AudioModel))
	if err != nil {
		log.Error(module, "Audio provider unavailable, voice turns will be apologies", map[string]interface{}{
			"provider": cfg.Ai.AudioProvider,
			"error":    err.Error(),
		})
		return nil
	}
	return p
}

// LLMSettings picks the key and endpoint the named provider needs.
func LLMSettings(cfg *config.Config, provider, model string) factory.Settings {
	s := factory.Settings{Provider: provider, Model: model}
	switch provider {
	case factory.ProviderGemini:
		s.APIKey = cfg.Keys.GoogleGemini
	case factory.ProviderHuggingFace:
		s.APIKey = cfg.Keys.HuggingFace
		s.BaseURL = cfg.Ai.LLMBaseURL
	case factory.ProviderOllama:
		s.BaseURL = cfg.Ai.OllamaBaseURL
	case factory.ProviderRelay:
		s.APIKey = cfg.Keys.Relay
		s.BaseURL = cfg.Ai.RelayEndpointURL
	}
	return s
}

func healthChecks(db *gorm.DB, rdb *redis.Client) map[string]controller.HealthCheck {
	return map[string]controller.HealthCheck{
		"database": func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Ping()
		},
		"redis": func() error {
			if rdb == nil {
				return errors.New("not connected")
			}
			return rdb.Ping(context.Background()).Err()
		},
	}
}
