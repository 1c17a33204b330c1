package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"classroom/internal/api/v1/router"
	"classroom/internal/config"
	"classroom/internal/logger"

	"github.com/joho/godotenv"
)

// @title Classroom API
// @version 1.0
// @description Classes, posts, assignments, grading, Q&A and playlists on a hosted backend
// @host localhost:8080
// @BasePath /v1
// @Schemes http https

func main() {
	// 1. Load configuration
	envErr := godotenv.Load()
	logger := logger.New()
	if envErr != nil {
		logger.Warn().Msg("Warning: no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Msgf("Error loading config: %v", err)
	}

	// 2. Connect backing services and build the router
	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	handler, cleanup, err := router.Build(startCtx, cfg, logger)
	cancelStart()
	if err != nil {
		logger.Fatal().Msgf("Failed to build router: %v", err)
	}
	defer cleanup()

	// 3. Create HTTP server. The write timeout leaves room for slow
	// inference replies and uploads.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: time.Duration(cfg.InferenceTimeoutSec+30) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 4. Start server in a goroutine
	go func() {
		logger.Info().Msgf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Msgf("Listen: %s", err)
		}
	}()

	// 5. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("Shutdown signal received, exiting...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
		return
	}
	logger.Info().Msg("Server shut down gracefully")
}
