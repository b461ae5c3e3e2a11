package bootstrap

import (
	"log"

	"ai-skincare-client/internal/config"
	"ai-skincare-client/internal/pkg/logger"
	"ai-skincare-client/internal/repository/memory"
	"ai-skincare-client/internal/repository/redisstore"
	"ai-skincare-client/internal/service"
	"ai-skincare-client/pkg/agent"
	"ai-skincare-client/pkg/backend"
	"ai-skincare-client/pkg/events"
	"ai-skincare-client/pkg/session"
	"ai-skincare-client/pkg/store"
)

type Container struct {
	FlowService      service.IFlowService
	TelemetryService service.ITelemetryService

	Logger logger.ILogger
	Bus    *events.Bus
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	bus := events.NewBus()

	// 3. Snapshot Storage
	var snapshotRepo session.SnapshotRepository
	if cfg.Store.Driver == "redis" {
		redisRepo, err := redisstore.NewSnapshotRepository(cfg.Store.RedisURL, cfg.Store.SnapshotTTL)
		if err != nil {
			log.Printf("[WARN] Redis unavailable, falling back to memory snapshots: %v", err)
			snapshotRepo = memory.NewSnapshotRepository(cfg.Store.SnapshotTTL)
		} else {
			snapshotRepo = redisRepo
			log.Printf("[INFO] Using Snapshot Storage: REDIS")
		}
	} else {
		snapshotRepo = memory.NewSnapshotRepository(cfg.Store.SnapshotTTL)
	}

	// 4. Backend Port
	var port backend.Port
	if cfg.App.Mode == store.ModeLive {
		client := backend.NewClient(cfg.Backend.BaseURL)
		client.HTTPClient.Timeout = cfg.Backend.Timeout
		port = backend.NewLivePort(client)
		log.Printf("[INFO] Using Backend Port: LIVE (%s)", cfg.Backend.BaseURL)
	} else {
		port = backend.NewDemoPort()
		log.Printf("[INFO] Using Backend Port: DEMO")
	}

	// 5. Services
	manager := session.NewManager(snapshotRepo)
	flowService := service.NewFlowService(port, manager, agent.NewValidator(nil), bus, sysLogger)
	telemetryService := service.NewTelemetryService(bus, sysLogger)

	return &Container{
		FlowService:      flowService,
		TelemetryService: telemetryService,
		Logger:           sysLogger,
		Bus:              bus,
	}
}
