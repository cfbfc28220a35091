package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkuiper/taalcoach/internal/config"
	"github.com/mkuiper/taalcoach/internal/domain/srs"
	"github.com/mkuiper/taalcoach/internal/ml/bandit"
	"github.com/mkuiper/taalcoach/internal/ml/mastery"
	"github.com/mkuiper/taalcoach/internal/platform/postgres"
	"github.com/mkuiper/taalcoach/internal/service/learning"
	"github.com/mkuiper/taalcoach/internal/store"
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
	learnerStore store.LearnerStore
	itemStore    store.ItemStore
	eventStore   store.ReviewEventStore
	armStore     store.ArmModelStore

	// Learning pipeline
	srsService      srs.Service
	predictor       *mastery.Predictor
	selector        *bandit.Selector
	learningService learning.Service
}

// newApplication creates a new application instance with all dependencies
// initialized. Configuration, logger, and database connection must be
// established before application initialization.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Initialize stores
	app.learnerStore = postgres.NewPostgresLearnerStore(db)
	app.itemStore = postgres.NewPostgresItemStore(db)
	app.eventStore = postgres.NewPostgresReviewEventStore(db)
	app.armStore = postgres.NewPostgresArmModelStore(db)

	// Initialize the SM-2 scheduler with any configured overrides.
	app.srsService = srs.NewServiceWithParams(srs.NewParams(srs.ParamsConfig{
		MinEaseFactor:     cfg.Scheduler.MinEaseFactor,
		MaxEaseFactor:     cfg.Scheduler.MaxEaseFactor,
		EaseFactorBonus:   cfg.Scheduler.EaseFactorBonus,
		EaseFactorPenalty: cfg.Scheduler.EaseFactorPenalty,
		FirstInterval:     cfg.Scheduler.FirstInterval,
		SecondInterval:    cfg.Scheduler.SecondInterval,
	}))

	// Initialize the per-learner mastery predictor.
	app.predictor = mastery.New(app.itemStore, app.eventStore, logger)

	// Initialize the exercise-format bandit.
	banditParams, err := bandit.NewParams(bandit.ParamsConfig{
		Epsilon:          &cfg.ML.BanditEpsilon,
		RetrainThreshold: &cfg.ML.BanditRetrainThreshold,
		RetrainEvery:     &cfg.ML.BanditRetrainEvery,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid bandit parameters: %w", err)
	}
	rng := newLockedRand(time.Now().UnixNano())
	app.selector = bandit.New(app.armStore, banditParams, rng, logger)

	// Initialize the learning service that ties the pipeline together.
	app.learningService = learning.NewService(learning.Config{
		DB:           db,
		Learners:     app.learnerStore,
		Items:        app.itemStore,
		Events:       app.eventStore,
		Arms:         app.armStore,
		SRS:          app.srsService,
		Predictor:    app.predictor,
		Selector:     app.selector,
		Rng:          rng,
		RetrainEvery: cfg.ML.MasteryRetrainEvery,
		Logger:       logger,
	})

	logger.Info("application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
