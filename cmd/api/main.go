// ABOUTME: Main entry point for the Content Capture API server
// ABOUTME: Wires together all components and starts the HTTP server

package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/anhbatoichoi/content-capture-universe/api"
	"github.com/anhbatoichoi/content-capture-universe/api/handlers"
	"github.com/anhbatoichoi/content-capture-universe/api/middleware"
	"github.com/anhbatoichoi/content-capture-universe/core/capture"
	"github.com/anhbatoichoi/content-capture-universe/core/chat"
	"github.com/anhbatoichoi/content-capture-universe/core/extraction"
	"github.com/anhbatoichoi/content-capture-universe/core/interfaces"
	"github.com/anhbatoichoi/content-capture-universe/core/markdown"
	"github.com/anhbatoichoi/content-capture-universe/core/settings"
	stdhttp "github.com/anhbatoichoi/content-capture-universe/infrastructure/http/standard"
	"github.com/anhbatoichoi/content-capture-universe/infrastructure/logger/structured"
	"github.com/anhbatoichoi/content-capture-universe/infrastructure/metrics"
	"github.com/anhbatoichoi/content-capture-universe/infrastructure/remote"
	"github.com/anhbatoichoi/content-capture-universe/infrastructure/storage/memory"
	"github.com/anhbatoichoi/content-capture-universe/infrastructure/storage/redis"
	"github.com/anhbatoichoi/content-capture-universe/infrastructure/storage/sqlite"
	"github.com/anhbatoichoi/content-capture-universe/pkg/config"
	"github.com/anhbatoichoi/content-capture-universe/pkg/featureflags"
)

func main() {
	// Load configuration
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := structured.NewLogger(structured.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	flags := featureflags.NewEnvManager("FEATURE_")
	ctx := context.Background()

	logger.Info("Starting Content Capture API", map[string]interface{}{
		"port":          cfg.Server.Port,
		"storage_type":  cfg.Storage.Type,
		"remote":        cfg.Remote.BaseURL,
		"poll_interval": cfg.Polling.Interval.String(),
	})

	storage, closeStorage := openStorage(cfg.Storage, logger)
	defer closeStorage.Close()

	// Remote extraction and chat client
	httpClient := stdhttp.NewClient(stdhttp.Options{
		Timeout:   cfg.Remote.Timeout,
		Transport: &middleware.LoggingRoundTripper{Logger: logger},
	})
	remoteClient := remote.NewClient(httpClient, cfg.Remote.BaseURL, logger)

	// Job store and its polling scheduler
	storeConfig := extraction.DefaultStoreConfig()
	storeConfig.Logger = logger
	storeConfig.ResumePolling = flags.IsEnabled(ctx, featureflags.ResumePolling)
	storeConfig.Scheduler.Interval = cfg.Polling.Interval
	if n := cfg.Polling.MaxChecksPerSecond; n > 0 {
		burst := int(n)
		if burst < 1 {
			burst = 1
		}
		storeConfig.Scheduler.Limiter = rate.NewLimiter(rate.Limit(n), burst)
	}

	var metricsHandler http.Handler
	if flags.IsEnabled(ctx, featureflags.MetricsEnabled) {
		pollMetrics := metrics.NewPollMetrics()
		storeConfig.Scheduler.Metrics = pollMetrics
		metricsHandler = pollMetrics.Handler()
	}

	store := extraction.NewJobStore(remoteClient, storage, storeConfig)
	if err := store.Load(ctx); err != nil {
		logger.Error("Failed to restore extraction jobs", map[string]interface{}{
			"error": err.Error(),
		})
	}

	chatService := chat.NewService(remoteClient, storage, logger)
	if err := chatService.Load(ctx); err != nil {
		logger.Error("Failed to restore chat sessions", map[string]interface{}{
			"error": err.Error(),
		})
	}

	selectors := settings.NewStore(storage, logger)
	captureService := capture.NewService(selectors, capture.Options{
		ReadabilityFallback: flags.IsEnabled(ctx, featureflags.ReadabilityFallback),
		Logger:              logger,
	})
	converter := markdown.NewConverter()

	// Create API with middleware
	apiConfig := api.APIConfig{
		Logger:         logger,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MetricsHandler: metricsHandler,
	}
	if flags.IsEnabled(ctx, featureflags.RateLimitEnabled) {
		apiConfig.RateLimit = cfg.Server.RateLimit
		apiConfig.RateWindow = cfg.Server.RateWindow
	}
	humaAPI, router := api.NewAPIWithMiddleware(apiConfig)

	// Create and register handlers
	handlers.NewExtractionHandler(store, store.Scheduler(), converter).RegisterRoutes(humaAPI)
	handlers.NewContentHandler(converter, captureService).RegisterRoutes(humaAPI)
	handlers.NewSettingsHandler(selectors).RegisterRoutes(humaAPI)
	handlers.NewChatHandler(chatService).RegisterRoutes(humaAPI)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Remote.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server starting", map[string]interface{}{
			"address": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", map[string]interface{}{
				"error": err.Error(),
			})
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Stop polling and flush jobs before the storage closes
	if err := store.Close(); err != nil {
		logger.Error("Failed to close job store", map[string]interface{}{
			"error": err.Error(),
		})
	}

	logger.Info("Server stopped", nil)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openStorage creates the configured backend, falling back to memory when
// it cannot be opened
func openStorage(cfg config.StorageConfig, logger interfaces.Logger) (interfaces.Storage, io.Closer) {
	switch cfg.Type {
	case "redis":
		s, err := redis.NewStorage(cfg.Redis)
		if err != nil {
			logger.Error("Failed to connect to Redis, falling back to memory", map[string]interface{}{
				"error": err.Error(),
			})
			break
		}
		logger.Info("Using Redis storage", map[string]interface{}{
			"address": cfg.Redis.Address,
		})
		return s, s
	case "sqlite":
		s, err := sqlite.NewStorage(cfg.SQLitePath, logger)
		if err != nil {
			logger.Error("Failed to open SQLite storage, falling back to memory", map[string]interface{}{
				"error": err.Error(),
				"path":  cfg.SQLitePath,
			})
			break
		}
		logger.Info("Using SQLite storage", map[string]interface{}{
			"path": cfg.SQLitePath,
		})
		return s, s
	}

	logger.Info("Using memory storage", nil)
	return memory.NewStorage(), nopCloser{}
}
