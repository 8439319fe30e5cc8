package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pulsesift/pulsesift/internal/signal"
)

// SaveSignal inserts a harvested signal. Re-harvesting the same content
// from the same source is a no-op: the (source, canonical_hash) pair is
// the idempotency key. Returns true when a row was actually inserted.
func (db *DB) SaveSignal(ctx context.Context, sig *signal.Signal) (bool, error) {
	metadata, err := marshalMetadata(sig.Metadata)
	if err != nil {
		return false, err
	}

	tag, err := db.Pool.Exec(ctx, `
		INSERT INTO signals (id, source, content, author, url, captured_at, metadata, tags, canonical_hash, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (source, canonical_hash) DO NOTHING
	`,
		sig.ID,
		string(sig.Source),
		sig.Content,
		sig.Author,
		sig.URL,
		sig.CapturedAt,
		metadata,
		sig.Tags,
		signal.CanonicalHash(sig.Content),
		SignalStatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("save signal: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// GetUnprocessedSignals returns pending signals oldest first. The order
// is total (capture time, then id) so batch composition is reproducible.
func (db *DB) GetUnprocessedSignals(ctx context.Context, limit int) ([]signal.Signal, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, source, content, author, url, captured_at, metadata, sentiment, tags, quality
		FROM signals
		WHERE status = $1
		ORDER BY captured_at, id
		LIMIT $2
	`, SignalStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("get unprocessed signals: %w", err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

// GetBacklogCount returns the number of pending signals.
func (db *DB) GetBacklogCount(ctx context.Context) (int, error) {
	var count int
	if err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM signals WHERE status = $1`, SignalStatusPending,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("get backlog count: %w", err)
	}

	return count, nil
}

// MarkCanonical promotes a signal and records its quality score and
// sentiment label in one statement.
func (db *DB) MarkCanonical(ctx context.Context, id string, quality float64, sentiment string) error {
	if _, err := db.Pool.Exec(ctx, `
		UPDATE signals
		SET status = $2, quality = $3, sentiment = NULLIF($4, ''), processed_at = now()
		WHERE id = $1
	`, id, SignalStatusCanonical, quality, sentiment); err != nil {
		return fmt.Errorf("mark canonical: %w", err)
	}

	return nil
}

// MarkSignalsStatus sets the status of a batch of signals.
func (db *DB) MarkSignalsStatus(ctx context.Context, ids []string, status string) error {
	if len(ids) == 0 {
		return nil
	}

	if _, err := db.Pool.Exec(ctx, `
		UPDATE signals SET status = $2, processed_at = now() WHERE id = ANY($1)
	`, ids, status); err != nil {
		return fmt.Errorf("mark signals %s: %w", status, err)
	}

	return nil
}

// GetCanonicalSignals returns processed canonical signals captured in
// [from, to], newest first.
func (db *DB) GetCanonicalSignals(ctx context.Context, from, to time.Time) ([]signal.Signal, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, source, content, author, url, captured_at, metadata, sentiment, tags, quality
		FROM signals
		WHERE status = $1 AND captured_at BETWEEN $2 AND $3
		ORDER BY captured_at DESC, id
	`, SignalStatusCanonical, from, to)
	if err != nil {
		return nil, fmt.Errorf("get canonical signals: %w", err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

func scanSignals(rows pgx.Rows) ([]signal.Signal, error) {
	var signals []signal.Signal

	for rows.Next() {
		var (
			sig       signal.Signal
			source    string
			metadata  []byte
			sentiment pgtype.Text
			quality   pgtype.Float8
		)

		if err := rows.Scan(
			&sig.ID, &source, &sig.Content, &sig.Author, &sig.URL,
			&sig.CapturedAt, &metadata, &sentiment, &sig.Tags, &quality,
		); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}

		sig.Source = signal.Source(source)
		sig.Sentiment = sentiment.String

		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &sig.Metadata); err != nil {
				return nil, fmt.Errorf("decode signal metadata: %w", err)
			}
		}

		if quality.Valid {
			sig.Quality = &signal.QualityScore{Overall: quality.Float64}
		}

		signals = append(signals, sig)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signals: %w", err)
	}

	return signals, nil
}

func marshalMetadata(metadata map[string]any) ([]byte, error) {
	if metadata == nil {
		return nil, nil
	}

	encoded, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("encode signal metadata: %w", err)
	}

	return encoded, nil
}
