// Package pipeline drives signals from harvest to storage: collect,
// deduplicate, score, filter, classify, persist.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pulsesift/pulsesift/internal/dedup"
	"github.com/pulsesift/pulsesift/internal/filters"
	"github.com/pulsesift/pulsesift/internal/harvest"
	"github.com/pulsesift/pulsesift/internal/platform/observability"
	"github.com/pulsesift/pulsesift/internal/sentiment"
	"github.com/pulsesift/pulsesift/internal/signal"
	db "github.com/pulsesift/pulsesift/internal/storage"
)

// Repository is the storage surface the pipeline needs.
type Repository interface {
	SaveSignal(ctx context.Context, sig *signal.Signal) (bool, error)
	GetUnprocessedSignals(ctx context.Context, limit int) ([]signal.Signal, error)
	GetBacklogCount(ctx context.Context) (int, error)
	MarkCanonical(ctx context.Context, id string, quality float64, sentiment string) error
	MarkSignalsStatus(ctx context.Context, ids []string, status string) error
	SaveDuplicates(ctx context.Context, canonicalID string, duplicateIDs []string) error
}

var _ Repository = (*db.DB)(nil)

// Config holds the pipeline's tunables.
type Config struct {
	BatchSize int
	// MinQuality drops canonical signals scoring below it. Zero disables
	// the quality gate.
	MinQuality float64
}

// Pipeline wires harvesters, the deduplicator, the quality gate, and the
// sentiment classifier around the signal store.
type Pipeline struct {
	cfg        Config
	repo       Repository
	harvesters []harvest.Harvester
	dedup      *dedup.Deduplicator
	filterer   *filters.Filterer
	classifier sentiment.Classifier
	logger     *zerolog.Logger
}

// New builds a pipeline. classifier may be nil, in which case canonical
// signals are stored without a sentiment label.
func New(
	cfg Config,
	repo Repository,
	harvesters []harvest.Harvester,
	deduplicator *dedup.Deduplicator,
	filterer *filters.Filterer,
	classifier sentiment.Classifier,
	logger *zerolog.Logger,
) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		repo:       repo,
		harvesters: harvesters,
		dedup:      deduplicator,
		filterer:   filterer,
		classifier: classifier,
		logger:     logger,
	}
}

// Harvest runs every harvester once and stores what they return. Signals
// already present under the same (source, canonical hash) pair are
// skipped by the store. A failing harvester is logged and does not stop
// the others.
func (p *Pipeline) Harvest(ctx context.Context, since time.Time) error {
	for _, h := range p.harvesters {
		source := string(h.Source())

		signals, err := h.Harvest(ctx, since)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("harvest %s: %w", source, err)
			}

			p.logger.Error().Err(err).Str("source", source).Msg("harvester failed")

			continue
		}

		saved := 0

		for i := range signals {
			inserted, err := p.repo.SaveSignal(ctx, &signals[i])
			if err != nil {
				return fmt.Errorf("save signal from %s: %w", source, err)
			}

			if inserted {
				saved++
			}
		}

		observability.SignalsHarvested.WithLabelValues(source).Add(float64(saved))

		p.logger.Info().
			Str("source", source).
			Int("harvested", len(signals)).
			Int("saved", saved).
			Msg("harvest complete")
	}

	return nil
}

// ProcessBatch takes one batch of pending signals through deduplication,
// the quality gate, and sentiment classification, then records the
// outcome of every signal in the batch.
func (p *Pipeline) ProcessBatch(ctx context.Context) error {
	batch, err := p.repo.GetUnprocessedSignals(ctx, p.cfg.BatchSize)
	if err != nil {
		return fmt.Errorf("load pending signals: %w", err)
	}

	if len(batch) == 0 {
		return nil
	}

	started := time.Now()
	result := p.dedup.Deduplicate(batch)

	observability.DedupBatchDurationSeconds.Observe(time.Since(started).Seconds())
	observability.DedupRate.Set(result.Stats.DedupRate)
	observability.DuplicatesRemoved.Add(float64(result.Stats.DuplicatesRemoved))

	kept := result.Canonical
	if p.cfg.MinQuality > 0 {
		kept = p.filterer.ByMinQuality(kept, p.cfg.MinQuality)
	}

	keptIDs := make(map[string]struct{}, len(kept))
	for _, sig := range kept {
		keptIDs[sig.ID] = struct{}{}
	}

	var duplicateIDs, filteredIDs []string

	for _, canonical := range result.Canonical {
		if _, ok := keptIDs[canonical.ID]; !ok {
			filteredIDs = append(filteredIDs, canonical.ID)
		}

		for _, member := range result.Duplicates[canonical.ID] {
			if member.ID != canonical.ID {
				duplicateIDs = append(duplicateIDs, member.ID)
			}
		}
	}

	for _, canonical := range kept {
		if err := p.storeCanonical(ctx, canonical); err != nil {
			return err
		}

		if err := p.recordDuplicates(ctx, canonical.ID, result.Duplicates[canonical.ID]); err != nil {
			return err
		}
	}

	if err := p.markStatus(ctx, duplicateIDs, db.SignalStatusDuplicate); err != nil {
		return err
	}

	if err := p.markStatus(ctx, filteredIDs, db.SignalStatusFiltered); err != nil {
		return err
	}

	observability.PipelineProcessed.WithLabelValues(db.SignalStatusCanonical).Add(float64(len(kept)))
	observability.PipelineProcessed.WithLabelValues(db.SignalStatusDuplicate).Add(float64(len(duplicateIDs)))
	observability.PipelineProcessed.WithLabelValues(db.SignalStatusFiltered).Add(float64(len(filteredIDs)))

	p.logger.Info().
		Int("batch", len(batch)).
		Int("canonical", len(kept)).
		Int("duplicates", len(duplicateIDs)).
		Int("filtered", len(filteredIDs)).
		Float64("dedup_rate", result.Stats.DedupRate).
		Msg("batch processed")

	return nil
}

func (p *Pipeline) storeCanonical(ctx context.Context, canonical signal.Signal) error {
	label := p.classify(ctx, canonical)

	overall := 0.0
	if canonical.Quality != nil {
		overall = canonical.Quality.Overall
	}

	if err := p.repo.MarkCanonical(ctx, canonical.ID, overall, label); err != nil {
		return fmt.Errorf("mark canonical %s: %w", canonical.ID, err)
	}

	return nil
}

func (p *Pipeline) recordDuplicates(ctx context.Context, canonicalID string, members []signal.Signal) error {
	if len(members) < 2 {
		return nil
	}

	ids := make([]string, 0, len(members)-1)

	for _, member := range members {
		if member.ID != canonicalID {
			ids = append(ids, member.ID)
		}
	}

	if err := p.repo.SaveDuplicates(ctx, canonicalID, ids); err != nil {
		return fmt.Errorf("record duplicates of %s: %w", canonicalID, err)
	}

	return nil
}

// classify returns the sentiment label for a canonical signal, or an
// empty label when no classifier is configured or the call fails.
// Classification is best-effort: a down classifier must not block the
// pipeline.
func (p *Pipeline) classify(ctx context.Context, sig signal.Signal) string {
	if p.classifier == nil {
		return ""
	}

	label, err := p.classifier.Classify(ctx, sig.Content)
	if err != nil {
		if !errors.Is(err, sentiment.ErrCircuitBreakerOpen) {
			p.logger.Warn().Err(err).Str("signal", sig.ID).Msg("sentiment classification failed")
		}

		return ""
	}

	return label
}

func (p *Pipeline) markStatus(ctx context.Context, ids []string, status string) error {
	if len(ids) == 0 {
		return nil
	}

	if err := p.repo.MarkSignalsStatus(ctx, ids, status); err != nil {
		return fmt.Errorf("mark signals %s: %w", status, err)
	}

	return nil
}

// RefreshBacklogGauge updates the backlog metric. Intended as a worker
// periodic task.
func (p *Pipeline) RefreshBacklogGauge(ctx context.Context) {
	count, err := p.repo.GetBacklogCount(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Msg("backlog count failed")
		return
	}

	observability.PipelineBacklog.Set(float64(count))
}
