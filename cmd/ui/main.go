package main

import (
	"context"
	"log"

	"custlens/internal"
	"custlens/internal/config"
	"custlens/internal/container"
)

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

	app, err := c.UIApp()
	if err != nil {
		log.Fatal("Failed to create UI app:", err)
	}

	log.Printf("Starting custlens UI on http://localhost:%s", cfg.Server.Port)
	log.Fatal(app.Start(":" + cfg.Server.Port))
}
