package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BerylCAtieno/document-compliance-api/internal/completion"
	"github.com/BerylCAtieno/document-compliance-api/internal/config"
	"github.com/BerylCAtieno/document-compliance-api/internal/criteria"
	"github.com/BerylCAtieno/document-compliance-api/internal/db"
	"github.com/BerylCAtieno/document-compliance-api/internal/extractor"
	"github.com/BerylCAtieno/document-compliance-api/internal/middleware"
	"github.com/BerylCAtieno/document-compliance-api/internal/prompt"
	"github.com/BerylCAtieno/document-compliance-api/internal/repository"
	"github.com/BerylCAtieno/document-compliance-api/internal/review"
	"github.com/BerylCAtieno/document-compliance-api/internal/router"
	"github.com/BerylCAtieno/document-compliance-api/internal/services"
	"github.com/BerylCAtieno/document-compliance-api/internal/storage"
	"github.com/BerylCAtieno/document-compliance-api/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.LogLevel)

	// Initialize database and run migrations
	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to open database", "error", err, "path", cfg.DatabaseURL)
	}
	defer database.Close()

	sessionRepo := repository.NewRepository(database)
	checkers := map[string]middleware.HealthChecker{"database": sessionRepo}

	// Archive for uploaded originals
	var archive storage.Storage
	if cfg.StorageEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		archive, err = storage.NewS3Storage(ctx, cfg)
		cancel()
		if err != nil {
			logger.Fatal("Failed to initialize storage", "error", err)
		}
		checkers["storage"] = archive
	} else {
		logger.Info("S3_ENDPOINT not set, uploaded originals will not be archived")
	}

	registry, err := extractor.New(cfg.AllowedFormats...)
	if err != nil {
		logger.Fatal("Invalid document formats", "error", err)
	}

	catalog, err := loadCatalog(cfg.CriteriaFile)
	if err != nil {
		logger.Fatal("Failed to load criteria", "error", err, "path", cfg.CriteriaFile)
	}

	template, err := prompt.ParseTemplate(cfg.PromptTemplate)
	if err != nil {
		logger.Fatal("Invalid prompt template", "error", err)
	}
	mode, err := review.ParseMode(cfg.ReviewMode)
	if err != nil {
		logger.Fatal("Invalid review mode", "error", err)
	}

	streamer := completion.NewOpenAIStreamer(completion.Config{
		BaseURL:     cfg.LLMBaseURL,
		APIKey:      cfg.LLMAPIKey,
		Model:       cfg.LLMModel,
		Temperature: cfg.LLMTemperature,
	}, logger)

	reviewService := services.NewService(services.Dependencies{
		Repo:         sessionRepo,
		Storage:      archive,
		Extractor:    registry,
		Orchestrator: review.NewOrchestrator(streamer, template, logger),
		Catalog:      catalog,
		DefaultMode:  mode,
	}, logger)

	// Setup HTTP router
	handler := router.NewRouter(reviewService, router.Options{
		MaxFileSize: cfg.MaxFileSize,
		Checkers:    checkers,
	}, logger)

	// Create HTTP server. The analyze stream clears its own write deadline.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("Starting server",
			"port", cfg.Port,
			"model", cfg.LLMModel,
			"mode", mode,
			"formats", registry.Formats())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}

func loadCatalog(path string) (*criteria.Catalog, error) {
	if path == "" {
		return criteria.DefaultCatalog(), nil
	}
	return criteria.LoadFile(path)
}
