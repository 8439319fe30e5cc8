// Package app provides the application bootstrap and runtime orchestration.
//
// The App type wires together all dependencies and exposes methods to run
// the operational modes:
//
//   - Harvest mode: polls the configured sources and stores new signals
//   - Worker mode: deduplicates, scores, and classifies pending signals
//   - Once mode: one harvest pass plus processing until the backlog drains
//
// Each mode can be run independently or combined based on deployment needs.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pulsesift/pulsesift/internal/dedup"
	"github.com/pulsesift/pulsesift/internal/filters"
	"github.com/pulsesift/pulsesift/internal/harvest"
	"github.com/pulsesift/pulsesift/internal/pipeline"
	"github.com/pulsesift/pulsesift/internal/platform/config"
	"github.com/pulsesift/pulsesift/internal/platform/observability"
	"github.com/pulsesift/pulsesift/internal/platform/worker"
	"github.com/pulsesift/pulsesift/internal/quality"
	"github.com/pulsesift/pulsesift/internal/sentiment"
	db "github.com/pulsesift/pulsesift/internal/storage"
)

const (
	backlogGaugeInterval = time.Minute
	llmAPIKeyMock        = "mock"
)

// App holds the application dependencies and provides methods to run
// the different modes.
type App struct {
	cfg      *config.Config
	database *db.DB
	logger   *zerolog.Logger
}

// New creates a new App instance with the given dependencies.
func New(cfg *config.Config, database *db.DB, logger *zerolog.Logger) *App {
	return &App{
		cfg:      cfg,
		database: database,
		logger:   logger,
	}
}

// StartHealthServer starts the health check and metrics server.
func (a *App) StartHealthServer(ctx context.Context) error {
	srv := observability.NewServer(a.database, a.cfg.HealthPort, a.logger)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("health server start: %w", err)
	}

	return nil
}

// RunHarvester runs the harvest mode: every interval, pull new signals
// from the configured sources.
func (a *App) RunHarvester(ctx context.Context) error {
	a.logger.Info().Msg("Starting harvest mode")

	p, err := a.newPipeline()
	if err != nil {
		return err
	}

	interval, err := time.ParseDuration(a.cfg.HarvestInterval)
	if err != nil {
		return fmt.Errorf("invalid harvest interval: %w", err)
	}

	lookback, err := time.ParseDuration(a.cfg.HarvestLookback)
	if err != nil {
		return fmt.Errorf("invalid harvest lookback: %w", err)
	}

	return worker.Loop(ctx, worker.Config{
		Name:         "harvester",
		PollInterval: interval,
		Process: func(ctx context.Context) error {
			return p.Harvest(ctx, time.Now().UTC().Add(-lookback))
		},
		Logger: a.logger,
	})
}

// RunWorker runs the worker mode: process pending signals in batches.
func (a *App) RunWorker(ctx context.Context) error {
	a.logger.Info().Msg("Starting worker mode")

	p, err := a.newPipeline()
	if err != nil {
		return err
	}

	pollInterval, err := time.ParseDuration(a.cfg.WorkerPollInterval)
	if err != nil {
		return fmt.Errorf("invalid worker poll interval: %w", err)
	}

	return worker.Loop(ctx, worker.Config{
		Name:         "pipeline",
		PollInterval: pollInterval,
		Process:      p.ProcessBatch,
		PeriodicTasks: []worker.PeriodicTask{
			{
				Name:     "backlog-gauge",
				Interval: backlogGaugeInterval,
				Run:      p.RefreshBacklogGauge,
			},
		},
		Logger: a.logger,
	})
}

// RunOnce performs one harvest pass and processes signals until the
// backlog is drained, then exits.
func (a *App) RunOnce(ctx context.Context) error {
	a.logger.Info().Msg("Starting single run")

	p, err := a.newPipeline()
	if err != nil {
		return err
	}

	lookback, err := time.ParseDuration(a.cfg.HarvestLookback)
	if err != nil {
		return fmt.Errorf("invalid harvest lookback: %w", err)
	}

	since := time.Now().UTC().Add(-lookback)

	if err := p.Harvest(ctx, since); err != nil {
		return fmt.Errorf("harvest: %w", err)
	}

	for {
		backlog, err := a.database.GetBacklogCount(ctx)
		if err != nil {
			return fmt.Errorf("backlog count: %w", err)
		}

		if backlog == 0 {
			break
		}

		if err := p.ProcessBatch(ctx); err != nil {
			return fmt.Errorf("process batch: %w", err)
		}
	}

	canonical, err := a.database.GetCanonicalSignals(ctx, since, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("canonical signals: %w", err)
	}

	a.logger.Info().Int("canonical", len(canonical)).Msg("single run complete")

	return nil
}

func (a *App) newPipeline() (*pipeline.Pipeline, error) {
	scorer := quality.New()

	deduplicator, err := dedup.New(scorer, a.cfg.SimilarityThreshold)
	if err != nil {
		return nil, fmt.Errorf("deduplicator init: %w", err)
	}

	harvesters, err := harvest.FromConfig(a.cfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("harvester init: %w", err)
	}

	return pipeline.New(
		pipeline.Config{
			BatchSize:  a.cfg.WorkerBatchSize,
			MinQuality: a.cfg.MinQuality,
		},
		a.database,
		harvesters,
		deduplicator,
		filters.New(scorer),
		a.newClassifier(),
		a.logger,
	), nil
}

// newClassifier returns the sentiment classifier, or nil when no usable
// API key is configured.
func (a *App) newClassifier() sentiment.Classifier {
	if a.cfg.LLMAPIKey == "" || a.cfg.LLMAPIKey == llmAPIKeyMock {
		return nil
	}

	ttl, err := time.ParseDuration(a.cfg.SentimentCacheTTL)
	if err != nil {
		a.logger.Warn().Err(err).Msg("invalid sentiment cache ttl, using 1h")

		ttl = time.Hour
	}

	classifier := sentiment.NewOpenAI(a.cfg.LLMAPIKey, a.cfg.LLMModel, a.cfg.RateLimitRPS, a.logger)

	return sentiment.Cached(classifier, a.cfg.SentimentCacheSize, ttl)
}
