package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/revisehq/revise-api/internal/config"
	"github.com/revisehq/revise-api/internal/domain/srs"
	"github.com/revisehq/revise-api/internal/platform/postgres"
	"github.com/revisehq/revise-api/internal/service"
	"github.com/revisehq/revise-api/internal/store"
	"github.com/revisehq/revise-api/internal/task"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	cardStore store.CardStore
	deckStore store.DeckStore
	logStore  store.ReviewLogStore
	txRunner  store.TxRunner

	// Service interfaces
	srsService  srs.Service
	cardService service.CardService
	deckService service.DeckService

	// Background work
	taskQueue   *task.TaskQueue
	workerPool  *task.WorkerPool
	dueReporter *service.DueCountReporter
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Initialize stores
	cardStore := postgres.NewPostgresCardStore(db, logger)
	deckStore := postgres.NewPostgresDeckStore(db, logger)
	logStore := postgres.NewPostgresReviewLogStore(db, logger)
	app.cardStore = cardStore
	app.deckStore = deckStore
	app.logStore = logStore
	app.txRunner = postgres.NewTxRunner(db, cardStore, deckStore, logStore)

	// Initialize the scheduler with the configured parameters
	app.srsService = srs.NewServiceWithParams(srs.NewParams(srs.ParamsConfig{
		TargetRetention: cfg.Scheduler.TargetRetention,
		MaxIntervalDays: cfg.Scheduler.MaxIntervalDays,
		DisableFuzz:     cfg.Scheduler.DisableFuzz,
	}))
	logger.Info("Scheduler initialized",
		"target_retention", cfg.Scheduler.TargetRetention,
		"max_interval_days", cfg.Scheduler.MaxIntervalDays)

	// Initialize card service
	var err error
	app.cardService, err = service.NewCardService(
		app.cardStore,
		app.logStore,
		app.txRunner,
		app.srsService,
		cfg.Scheduler.ReviewRetries,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create card service: %w", err)
	}

	// Initialize deck service
	app.deckService, err = service.NewDeckService(app.deckStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create deck service: %w", err)
	}

	// Periodic maintenance job run on the worker pool
	app.dueReporter, err = service.NewDueCountReporter(app.deckService, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create due count reporter: %w", err)
	}

	// Initialize background task processing
	app.taskQueue = task.NewTaskQueue(cfg.Worker.QueueSize, logger)
	app.workerPool = task.NewWorkerPool(app.taskQueue, task.WorkerPoolConfig{
		WorkerCount: cfg.Worker.Count,
	}, logger)
	app.workerPool.Start()

	logger.Info("Application initialized successfully")
	return app, nil
}

// dueReportInterval is how often the review backlog maintenance job is
// enqueued on the worker pool.
const dueReportInterval = time.Hour

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	// Set up router using the application dependencies
	router := app.setupRouter()

	app.startMaintenance(ctx)

	// Start the HTTP server
	err := app.startHTTPServer(ctx, router)
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// startMaintenance enqueues the due count report on the worker pool at a
// fixed interval until the context is cancelled.
func (app *application) startMaintenance(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(dueReportInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t := task.NewFuncTask("due_count_report", app.dueReporter.Report)
				if err := app.taskQueue.Enqueue(t); err != nil {
					app.logger.Warn("Failed to enqueue due count report",
						"error", err)
				}
			}
		}
	}()
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	// Stop background workers
	if app.taskQueue != nil {
		app.taskQueue.Close()
	}
	if app.workerPool != nil {
		app.workerPool.Stop()
	}

	// Close database connection
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
