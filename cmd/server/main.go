// Package main implements the entry point for the revise API server,
// which schedules spaced repetition flashcards organized into decks.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/revisehq/revise-api/internal/config"
)

// main is the entry point for the revise-api server. It loads configuration,
// sets up logging, connects to the database, runs migrations, wires the
// application dependencies, and starts the HTTP server.
func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Set up structured logging using the configured log level
	logger, err := setupAppLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	// Establish database connection
	db, err := setupAppDatabase(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	// Apply pending schema migrations
	if err := runMigrations(ctx, db, logger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Wire application dependencies
	app, err := newApplication(cfg, logger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	// Start the server; blocks until shutdown
	return app.Run(ctx)
}
