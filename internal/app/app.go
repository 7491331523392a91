// Package app wires the service graph: storage, providers, the shared
// vector index, the ingestion and query pipelines, and their HTTP handlers.
package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/capsa/internal/common"
	"github.com/ternarybob/capsa/internal/handlers"
	"github.com/ternarybob/capsa/internal/interfaces"
	"github.com/ternarybob/capsa/internal/services/answer"
	"github.com/ternarybob/capsa/internal/services/chunker"
	"github.com/ternarybob/capsa/internal/services/embeddings"
	"github.com/ternarybob/capsa/internal/services/events"
	"github.com/ternarybob/capsa/internal/services/export"
	"github.com/ternarybob/capsa/internal/services/extractor"
	"github.com/ternarybob/capsa/internal/services/index"
	"github.com/ternarybob/capsa/internal/services/ingest"
	"github.com/ternarybob/capsa/internal/services/llm"
	"github.com/ternarybob/capsa/internal/services/scheduler"
	"github.com/ternarybob/capsa/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager

	// Core pipeline
	VectorIndex      interfaces.VectorIndex
	Chunker          interfaces.Chunker
	EmbeddingService interfaces.EmbeddingService
	IngestService    interfaces.IngestService
	AnswerService    interfaces.AnswerService

	// Supporting services
	EventService     interfaces.EventService
	ExtractorService *extractor.Service
	SchedulerService interfaces.SchedulerService
	ExportService    interfaces.ExportService

	// HTTP handlers
	ItemHandler   *handlers.ItemHandler
	QueryHandler  *handlers.QueryHandler
	StatusHandler *handlers.StatusHandler
	WSHandler     *handlers.WebSocketHandler

	ctx       context.Context
	cancelCtx context.CancelFunc
}

// New initializes the application with all dependencies. Provider clients
// are resolved up front so a missing API key fails at startup instead of on
// the first request.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}
	app.ctx, app.cancelCtx = context.WithCancel(context.Background())

	storageManager, err := badger.NewManager(logger, &cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	app.StorageManager = storageManager
	storageManager.StartMaintenance(app.ctx)

	if err := app.initServices(); err != nil {
		storageManager.Close()
		return nil, err
	}

	app.initHandlers()

	if err := app.SchedulerService.Start(); err != nil {
		logger.Warn().Err(err).Msg("Failed to start refresh scheduler")
	}

	logger.Info().
		Str("generation_model", cfg.LLM.GenerationModel).
		Str("embedding_model", cfg.LLM.EmbeddingModel).
		Msg("Application initialization complete")

	return app, nil
}

// initServices builds the service graph in dependency order. The vector
// index is created once here and injected into both pipelines; it is the
// single point of coupling between ingestion and querying.
func (a *App) initServices() error {
	a.EventService = events.NewService(a.Logger)

	factory := llm.NewFactory(a.Config, a.Logger)

	embeddingClient, err := factory.EmbeddingClient()
	if err != nil {
		return fmt.Errorf("failed to initialize embedding provider: %w", err)
	}

	generationClient, err := factory.GenerationClient()
	if err != nil {
		return fmt.Errorf("failed to initialize generation provider: %w", err)
	}

	a.EmbeddingService = embeddings.NewService(embeddingClient, a.Config.Embedding.Dimension, a.Logger)
	a.VectorIndex = index.NewService(a.Logger)

	chunkerService, err := chunker.NewService(
		chunker.WithWindowSize(a.Config.Chunking.WindowSize),
		chunker.WithOverlap(a.Config.Chunking.Overlap),
	)
	if err != nil {
		return fmt.Errorf("invalid chunking configuration: %w", err)
	}
	a.Chunker = chunkerService

	a.ExtractorService = extractor.NewService(a.Config, a.Logger)

	a.IngestService = ingest.NewService(
		a.Config,
		a.StorageManager.ItemStorage(),
		a.ExtractorService,
		a.Chunker,
		a.EmbeddingService,
		a.VectorIndex,
		a.EventService,
		a.Logger,
	)

	a.AnswerService = answer.NewService(
		a.Config,
		a.StorageManager.ItemStorage(),
		a.EmbeddingService,
		a.VectorIndex,
		generationClient,
		a.EventService,
		a.Logger,
	)

	a.ExportService = export.NewService(a.Logger)

	a.SchedulerService = scheduler.NewService(
		a.Config,
		a.IngestService,
		a.StorageManager.ItemStorage(),
		a.Logger,
	)

	return nil
}

// initHandlers builds the HTTP handlers over the service graph
func (a *App) initHandlers() {
	a.ItemHandler = handlers.NewItemHandler(
		a.IngestService,
		a.StorageManager.ItemStorage(),
		a.ExportService,
		a.Logger,
	)
	a.QueryHandler = handlers.NewQueryHandler(a.AnswerService, a.Logger)
	a.StatusHandler = handlers.NewStatusHandler(
		a.StorageManager.ItemStorage(),
		a.VectorIndex,
		a.Logger,
	)
	a.WSHandler = handlers.NewWebSocketHandler(a.EventService, a.Config.Events.Buffer, a.Logger)
}

// RebuildIndex repopulates the in-memory vector index from the record
// store. Must run before the server answers queries; embeddings are never
// persisted, so every start pays this cost.
func (a *App) RebuildIndex(ctx context.Context) error {
	result, err := a.IngestService.RebuildIndex(ctx)
	if err != nil {
		return err
	}

	a.Logger.Info().
		Int("items", result.Items).
		Int("chunks", result.Chunks).
		Int("skipped", result.Skipped).
		Msg("Vector index rebuilt from record store")

	return nil
}

// Close releases all application resources in reverse dependency order
func (a *App) Close() error {
	if a.cancelCtx != nil {
		a.cancelCtx()
	}

	if a.SchedulerService != nil {
		a.SchedulerService.Stop()
	}

	if a.ExtractorService != nil {
		a.ExtractorService.Close()
	}

	if a.EventService != nil {
		if err := a.EventService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close event service")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
