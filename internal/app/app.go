package app

import (
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigilo/internal/common"
	"github.com/ternarybob/vigilo/internal/handlers"
	"github.com/ternarybob/vigilo/internal/interfaces"
	"github.com/ternarybob/vigilo/internal/services/analysis"
	"github.com/ternarybob/vigilo/internal/services/llm"
	"github.com/ternarybob/vigilo/internal/services/mailer"
	"github.com/ternarybob/vigilo/internal/services/pdf"
	"github.com/ternarybob/vigilo/internal/services/pipeline"
	"github.com/ternarybob/vigilo/internal/services/portal"
	"github.com/ternarybob/vigilo/internal/services/query"
	"github.com/ternarybob/vigilo/internal/services/scheduler"
	badgerstorage "github.com/ternarybob/vigilo/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Portal collection
	Scraper   interfaces.PortalScraper
	Extractor interfaces.PDFExtractor

	// AI services (nil when no provider is configured)
	LLMService interfaces.LLMService

	// Domain services
	QueryService    *query.Service
	AnalysisService *analysis.Service
	ReportService   *pdf.Service
	Mailer          interfaces.Mailer
	Pipeline        *pipeline.Service
	Scheduler       *scheduler.Service

	// HTTP handlers
	APIHandler       *handlers.APIHandler
	QueryHandler     *handlers.QueryHandler
	DocumentHandler  *handlers.DocumentHandler
	RunHandler       *handlers.RunHandler
	SchedulerHandler *handlers.SchedulerHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	logger.Info().
		Str("llm_provider", string(cfg.LLM.Provider)).
		Bool("ai_enabled", app.LLMService != nil).
		Bool("smtp_configured", app.Mailer.IsConfigured()).
		Msg("Application initialization complete")

	return app, nil
}

// initStorage initializes the storage layer (Badger)
func (a *App) initStorage() error {
	storageManager, err := badgerstorage.NewManager(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	return nil
}

// initServices wires the collection, analysis and delivery services
func (a *App) initServices() error {
	llmService, err := llm.NewLLMService(a.Config, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create LLM service: %w", err)
	}
	a.LLMService = llmService

	a.Scraper = portal.NewScraper(&a.Config.Portal, a.Logger)
	a.Extractor = pdf.NewExtractor(
		a.Config.Storage.Attachments,
		a.Config.Portal.UserAgent,
		&http.Client{Timeout: a.Config.Portal.RequestTimeout},
		a.Logger,
	)

	a.QueryService = query.NewService(a.LLMService, a.Logger)
	a.AnalysisService = analysis.NewService(a.LLMService, a.Logger)
	a.ReportService = pdf.NewService(a.Logger)
	a.Mailer = mailer.NewService(&a.Config.SMTP, a.Logger)

	a.Pipeline = pipeline.NewService(
		a.Config,
		a.Scraper,
		a.StorageManager,
		a.Extractor,
		a.AnalysisService,
		a.ReportService,
		a.Mailer,
		a.Logger,
	)

	a.Scheduler = scheduler.NewService(a.Pipeline, a.Logger)

	return nil
}

// initHandlers wires the HTTP handlers
func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler()
	a.QueryHandler = handlers.NewQueryHandler(a.QueryService, a.StorageManager, a.Logger)
	a.DocumentHandler = handlers.NewDocumentHandler(a.StorageManager, a.Logger)
	a.RunHandler = handlers.NewRunHandler(a.StorageManager, a.Logger)
	a.SchedulerHandler = handlers.NewSchedulerHandler(a.Scheduler, a.Logger)
}

// Close shuts down all components in reverse dependency order
func (a *App) Close() error {
	if a.Scheduler != nil {
		if err := a.Scheduler.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to stop scheduler")
		}
	}

	if a.Scraper != nil {
		if err := a.Scraper.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close portal scraper")
		}
	}

	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM service")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
			return err
		}
	}

	a.Logger.Info().Msg("Application shutdown complete")
	return nil
}
