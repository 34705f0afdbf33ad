package container

import (
	"log"

	"github.com/jordanlanch/talentdb/config"
	"github.com/jordanlanch/talentdb/pkg/ai/llm"
	"github.com/jordanlanch/talentdb/pkg/api/handlers"
	"github.com/jordanlanch/talentdb/pkg/cache"
	"github.com/jordanlanch/talentdb/pkg/candidate"
	"github.com/jordanlanch/talentdb/pkg/database"
	"github.com/jordanlanch/talentdb/pkg/domain"
	"github.com/jordanlanch/talentdb/pkg/email"
	"github.com/jordanlanch/talentdb/pkg/export"
	"github.com/jordanlanch/talentdb/pkg/jobs"
	"github.com/jordanlanch/talentdb/pkg/logger"
	"github.com/jordanlanch/talentdb/pkg/metrics"
	"github.com/jordanlanch/talentdb/pkg/offer"
	"github.com/jordanlanch/talentdb/pkg/scheduler"
	"github.com/jordanlanch/talentdb/pkg/store"
	"github.com/jordanlanch/talentdb/pkg/template"
	"github.com/jordanlanch/talentdb/pkg/workflow"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger logger.Logger

	// Infrastructure
	DB      *database.Client
	Cache   *cache.Client
	Stores  domain.Stores
	Metrics *metrics.Metrics
	Cron    *scheduler.CronManager

	// Services
	EmailService     *email.Service
	Engine           *workflow.Engine
	WorkflowService  *workflow.Service
	CandidateService *candidate.Service
	TemplateService  *template.Service
	JobService       *jobs.Service
	OfferService     *offer.Service
	ExportService    *export.Service

	// Handlers
	WorkflowHandler  *handlers.WorkflowHandler
	CandidateHandler *handlers.CandidateHandler
	TemplateHandler  *handlers.TemplateHandler
	JobHandler       *handlers.JobHandler
	OfferHandler     *handlers.OfferHandler
	ExportHandler    *handlers.ExportHandler
}

// New creates and initializes all application dependencies
func New(cfg *config.Config) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logger.New(cfg.LogLevel, cfg.LogFormat),
	}

	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}

	c.initServices()
	c.initHandlers()

	c.Logger.Info("Container initialized successfully",
		"environment", cfg.APIEnvironment,
		"database", "connected",
		"cache", "connected")

	return c, nil
}

// initInfrastructure initializes database and cache connections
func (c *Container) initInfrastructure() error {
	var err error

	// Database
	c.DB, err = database.NewClient(c.Config.DatabaseURL)
	if err != nil {
		c.Logger.Error("Failed to connect to database", "error", err)
		return err
	}
	c.Stores = store.New(c.DB.DB)

	// Cache
	c.Cache, err = cache.NewClient(c.Config.RedisURL)
	if err != nil {
		c.Logger.Error("Failed to connect to cache", "error", err)
		return err
	}

	// Prometheus metrics
	c.Metrics = metrics.New()

	return nil
}

// initServices initializes all domain services
func (c *Container) initServices() {
	c.EmailService = email.NewService(
		c.Config.EmailFrom,
		c.Config.EmailFromName,
		c.Config.SendGridAPIKey,
	)

	// AI match scoring is optional; without an API key candidates simply
	// go unscored.
	var scorer domain.MatchScorer
	if c.Config.OpenAIAPIKey != "" {
		client := llm.NewOpenAIClient(llm.Config{
			APIKey: c.Config.OpenAIAPIKey,
			Model:  c.Config.OpenAIModel,
		}, c.Logger)
		scorer = llm.NewScorer(client)
		c.Logger.Info("AI match scoring enabled", "model", c.Config.OpenAIModel)
	} else {
		c.Logger.Info("AI match scoring disabled (no OpenAI API key)")
	}

	c.Engine = workflow.NewEngine(c.Stores, c.EmailService, c.Metrics, c.Logger, c.Config.AppBaseURL)
	c.WorkflowService = workflow.NewService(c.Stores.Workflows, c.Stores.Templates, c.Stores.Executions)
	c.CandidateService = candidate.NewService(
		c.Stores.Candidates,
		c.Stores.Jobs,
		c.Cache,
		scorer,
		c.Engine,
		c.Metrics,
		c.Logger,
	)
	c.TemplateService = template.NewService(c.Stores.Templates)
	c.JobService = jobs.NewService(c.Stores.Jobs)
	c.OfferService = offer.NewService(c.Stores.Offers, c.Stores.Candidates)
	c.ExportService = export.NewService(c.Stores.Candidates, c.Metrics)

	// Scheduled maintenance: stale execution sweep, token purge
	c.Cron = scheduler.NewCronManager(c.Stores.Executions, c.Stores.Candidates, log.Default())

	c.Logger.Info("Services initialized",
		"workflow_engine", "ready",
		"candidate_service", "ready",
		"export_service", "ready")
}

// initHandlers initializes all HTTP handlers
func (c *Container) initHandlers() {
	c.WorkflowHandler = handlers.NewWorkflowHandler(c.WorkflowService, c.Engine)
	c.CandidateHandler = handlers.NewCandidateHandler(c.CandidateService)
	c.TemplateHandler = handlers.NewTemplateHandler(c.TemplateService)
	c.JobHandler = handlers.NewJobHandler(c.JobService)
	c.OfferHandler = handlers.NewOfferHandler(c.OfferService)
	c.ExportHandler = handlers.NewExportHandler(c.ExportService)

	c.Logger.Info("Handlers initialized")
}

// Close closes all resources (database, cache connections)
func (c *Container) Close() error {
	c.Logger.Info("Shutting down container...")

	if c.Cron != nil {
		c.Cron.Stop()
	}

	if err := c.DB.Close(); err != nil {
		c.Logger.Error("Failed to close database", "error", err)
		return err
	}

	if err := c.Cache.Close(); err != nil {
		c.Logger.Error("Failed to close cache", "error", err)
		return err
	}

	c.Logger.Info("Container shutdown complete")
	return nil
}
