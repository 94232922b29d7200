package main

import (
	"context"
	stderrors "errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"custlens/internal"
	"custlens/internal/config"
	"custlens/internal/container"
)

func main() {
	// Load application configuration (.env first, then the environment)
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create dependency injection container
	appContainer, err := container.New(appConfig, logger)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	// Snapshot archive is optional
	if err := appContainer.Connect(ctx); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Warm the dataset so the first request does not pay for synthesis
	if _, err := appContainer.Source.Dataset(); err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}

	// Data file watcher and snapshot schedule, when configured
	if err := appContainer.StartBackground(ctx); err != nil {
		log.Fatalf("Failed to start background jobs: %v", err)
	}

	router, err := appContainer.Router()
	if err != nil {
		log.Fatalf("Failed to initialize routes: %v", err)
	}

	server := &http.Server{
		Addr:    ":" + appConfig.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Info("starting custlens server on port %s", appConfig.Server.Port)
		if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed: %v", err)
	}
}
