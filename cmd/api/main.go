package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/timmy/themeboard/internal/api"
	"github.com/timmy/themeboard/internal/config"
	"github.com/timmy/themeboard/internal/logger"
	"github.com/timmy/themeboard/internal/repository"
	"github.com/timmy/themeboard/internal/service"
	"github.com/timmy/themeboard/internal/storage"
)

func main() {
	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	ctx := appLogger.WithContext(context.Background())

	// Initialize the comment store; an unreadable database falls back to memory
	store, closeStore, fellBack := repository.OpenCommentStore(ctx, &cfg.Database)
	defer closeStore()
	if fellBack {
		appLogger.Warn("Running on in-memory store; changes will not survive a restart")
	}

	// Optional snapshot export of the theme map
	var snapshots service.SnapshotExporter
	if cfg.Snapshot.Enabled {
		objectStorage, err := storage.NewStorage(ctx, &cfg.Snapshot)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to initialize snapshot storage")
		}
		snapshots = storage.NewSnapshotWriter(objectStorage, cfg.Snapshot.Prefix)
		appLogger.WithField("type", cfg.Snapshot.Type).Info("Snapshot export enabled")
	}

	themeService := service.NewThemeService(
		store,
		service.NewLabelerFromConfig(&cfg.LLM, &cfg.Retry),
		snapshots,
		service.PipelineConfigFrom(&cfg.Pipeline),
	)

	// Opening the board reclassifies the corpus; failures leave the previous themes visible
	if cfg.Server.ClassifyOnStart {
		go func() {
			if _, err := themeService.ReclassifyAll(ctx); err != nil {
				appLogger.WithError(err).Warn("Startup reclassification failed")
			}
		}()
	}

	// Setup router
	router := api.SetupRouter(themeService, &cfg.Server, appLogger)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
