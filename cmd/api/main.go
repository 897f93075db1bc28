package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quotewise/intake-api/docs"
	"github.com/quotewise/intake-api/internal/auth"
	"github.com/quotewise/intake-api/internal/config"
	"github.com/quotewise/intake-api/internal/database"
	"github.com/quotewise/intake-api/internal/estimate"
	"github.com/quotewise/intake-api/internal/http/handler"
	"github.com/quotewise/intake-api/internal/http/middleware"
	"github.com/quotewise/intake-api/internal/http/router"
	"github.com/quotewise/intake-api/internal/jobs"
	"github.com/quotewise/intake-api/internal/logger"
	"github.com/quotewise/intake-api/internal/matcher"
	"github.com/quotewise/intake-api/internal/repository"
	"github.com/quotewise/intake-api/internal/storage"
	"github.com/quotewise/intake-api/internal/wizard"
	"go.uber.org/zap"
)

// @title Quotewise Intake API
// @version 1.0
// @description Estimate request intake API for the embeddable contractor widget

// @contact.name API Support
// @contact.email support@quotewise.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Widget JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for admin operations

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "intake-staging.quotewise.io"
	case "production":
		docs.SwaggerInfo.Host = "intake.quotewise.io"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize photo storage
	photoStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize repositories
	leadRepo := repository.NewLeadRepository(db)

	// Initialize the wizard flow controller and its collaborators
	catalog := matcher.DefaultCatalog()
	keywordMatcher := matcher.NewKeywordMatcher(log)
	sessionStore := wizard.NewStore(cfg.Estimate.SessionTTLDuration())

	jobClient := estimate.NewHTTPJobClient(
		cfg.Estimate.JobURL,
		cfg.Estimate.JobAPIKey,
		&http.Client{Timeout: cfg.Estimate.JobTimeoutDuration()},
		log,
	)

	pollCfg := estimate.PollerConfig{
		Interval: cfg.Estimate.PollIntervalDuration(),
		Deadline: cfg.Estimate.PollTimeoutDuration(),
	}

	wizardService := wizard.NewService(
		sessionStore,
		leadRepo,
		jobClient,
		keywordMatcher,
		catalog,
		pollCfg,
		wizard.NewLogNotifier(log),
		log,
	)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg.Auth.WidgetTokenSecret, cfg.Auth.AdminAPIKey, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	sessionHandler := handler.NewSessionHandler(wizardService, log)
	photoHandler := handler.NewPhotoHandler(photoStorage, cfg.Storage.MaxUploadSizeMB, log)
	catalogHandler := handler.NewCatalogHandler(catalog, log)
	leadHandler := handler.NewLeadHandler(leadRepo, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		sessionHandler,
		photoHandler,
		catalogHandler,
		leadHandler,
	)

	// Start the background sweeper: evicts idle sessions and flags leads
	// whose estimate computation never finished
	scheduler := jobs.NewScheduler(log)
	sweeper := jobs.NewSweeperJob(sessionStore, leadRepo, 30*time.Minute, log)
	if err := sweeper.Register(scheduler); err != nil {
		log.Error("Failed to register sweeper job", zap.Error(err))
	} else {
		scheduler.Start()
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler
		schedCtx := scheduler.Stop()
		<-schedCtx.Done()
		log.Info("Scheduler stopped")

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
