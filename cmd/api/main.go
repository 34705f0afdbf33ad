package main

// @title TalentDB API
// @version 1.0
// @description Recruitment pipeline API with rule-driven email automation.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jordanlanch/talentdb/config"
	"github.com/jordanlanch/talentdb/pkg/api/handlers"
	custommw "github.com/jordanlanch/talentdb/pkg/api/middleware"
	"github.com/jordanlanch/talentdb/pkg/container"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Printf("🔧 Configuration loaded (environment: %s)", cfg.APIEnvironment)

	// Initialize Sentry for error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: 1.0,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s)", cfg.SentryEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		log.Printf("ℹ️  Sentry disabled (no DSN configured)")
	}

	// Initialize all dependencies
	app, err := container.New(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize application: %v", err)
	}
	defer app.Close()

	// Scheduled maintenance jobs
	if err := app.Cron.SetupJobs(); err != nil {
		log.Fatalf("❌ Failed to setup cron jobs: %v", err)
	}
	app.Cron.Start()

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()

	// Rate limiter
	rateLimiter := custommw.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)

	// Global middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Printf("[%s] %s - Status: %d", c.Request().Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{
			Repanic: true,
		}))
	}

	e.Use(app.Metrics.Middleware())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	e.Use(middleware.Gzip())
	e.Use(middleware.Secure())
	e.Use(rateLimiter.RateLimitMiddleware())

	// Health check endpoints (public)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"name":        "TalentDB API",
			"version":     "0.1.0",
			"status":      "running",
			"environment": cfg.APIEnvironment,
			"timestamp":   time.Now().Unix(),
		})
	})

	e.GET("/health", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		if err := app.DB.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status":   "unhealthy",
				"database": "down",
			})
		}

		if _, err := app.Cache.Redis.Ping(ctx).Result(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status": "unhealthy",
				"cache":  "down",
			})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"status":   "healthy",
			"database": "up",
			"cache":    "up",
		})
	})

	// Prometheus metrics endpoint (public)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// API v1 routes
	v1 := e.Group("/api/v1")

	v1.GET("/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "pong"})
	})

	// Protected routes (require JWT)
	protected := v1.Group("")
	protected.Use(custommw.JWTMiddleware(cfg.JWTSecret))
	{
		// Candidate pipeline
		candidatesGroup := protected.Group("/candidates")
		{
			candidatesGroup.POST("", app.CandidateHandler.CreateCandidate)
			candidatesGroup.GET("", app.CandidateHandler.ListCandidates)
			candidatesGroup.GET("/export", app.ExportHandler.ExportCandidates) // Must be before /:id
			candidatesGroup.GET("/:id", app.CandidateHandler.GetCandidate)
			candidatesGroup.PUT("/:id", app.CandidateHandler.UpdateCandidate)
			candidatesGroup.PUT("/:id/stage", app.CandidateHandler.ChangeStage)
			candidatesGroup.DELETE("/:id", app.CandidateHandler.DeleteCandidate)
			candidatesGroup.GET("/:id/offers", app.OfferHandler.ListOffersForCandidate)
		}

		// Workflow automation
		workflowsGroup := protected.Group("/workflows")
		{
			workflowsGroup.POST("", app.WorkflowHandler.CreateWorkflow)
			workflowsGroup.GET("", app.WorkflowHandler.ListWorkflows)
			workflowsGroup.GET("/:id", app.WorkflowHandler.GetWorkflow)
			workflowsGroup.PUT("/:id", app.WorkflowHandler.UpdateWorkflow)
			workflowsGroup.DELETE("/:id", app.WorkflowHandler.DeleteWorkflow)
			workflowsGroup.GET("/:id/executions", app.WorkflowHandler.ListExecutions)
			workflowsGroup.POST("/:id/test", app.WorkflowHandler.TestWorkflow)
		}

		// Email templates
		templatesGroup := protected.Group("/templates")
		{
			templatesGroup.POST("", app.TemplateHandler.CreateTemplate)
			templatesGroup.GET("", app.TemplateHandler.ListTemplates)
			templatesGroup.GET("/:id", app.TemplateHandler.GetTemplate)
			templatesGroup.PUT("/:id", app.TemplateHandler.UpdateTemplate)
			templatesGroup.DELETE("/:id", app.TemplateHandler.DeleteTemplate)
		}

		// Job postings
		jobsGroup := protected.Group("/jobs")
		{
			jobsGroup.POST("", app.JobHandler.CreateJob)
			jobsGroup.GET("", app.JobHandler.ListJobs)
			jobsGroup.GET("/:id", app.JobHandler.GetJob)
			jobsGroup.PUT("/:id", app.JobHandler.UpdateJob)
			jobsGroup.DELETE("/:id", app.JobHandler.DeleteJob)
		}

		// Offers
		offersGroup := protected.Group("/offers")
		{
			offersGroup.POST("", app.OfferHandler.CreateOffer)
			offersGroup.GET("/:id", app.OfferHandler.GetOffer)
			offersGroup.PUT("/:id", app.OfferHandler.UpdateOffer)
		}
	}

	// Start server
	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Printf("🚀 TalentDB API starting on %s", address)
	log.Printf("🛡️  Rate limiting: %d req/min (burst: %d)", cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	log.Printf("⏰ Cron jobs: hourly stale execution sweep, daily 3AM token purge")

	// Graceful shutdown
	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}
