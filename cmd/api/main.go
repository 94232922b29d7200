package main

import (
	"context"
	"log"

	"custlens/internal"
	"custlens/internal/api"
	"custlens/internal/config"
	"custlens/internal/container"
)

// API-only server; the combined server lives in the repository root.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))

	c, err := container.New(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer c.Shutdown(context.Background())

	if err := c.Connect(context.Background()); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	router := api.NewRouter(c.APIHandler(), cfg.Server.GinMode)
	logger.Info("starting API server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal("Server failed:", err)
	}
}
