package db

import (
	"context"
	"fmt"
	"time"
)

// DuplicateRecord is one row of merge provenance: which signal was
// absorbed into which canonical representative, and when.
type DuplicateRecord struct {
	CanonicalID string
	DuplicateID string
	MergedAt    time.Time
}

// SaveDuplicates records merge provenance for one duplicate group.
func (db *DB) SaveDuplicates(ctx context.Context, canonicalID string, duplicateIDs []string) error {
	if len(duplicateIDs) == 0 {
		return nil
	}

	batch := make([]string, 0, len(duplicateIDs))
	for _, id := range duplicateIDs {
		if id != canonicalID {
			batch = append(batch, id)
		}
	}

	if _, err := db.Pool.Exec(ctx, `
		INSERT INTO signal_duplicates (canonical_id, duplicate_id)
		SELECT $1, unnest($2::text[])
		ON CONFLICT (canonical_id, duplicate_id) DO NOTHING
	`, canonicalID, batch); err != nil {
		return fmt.Errorf("save duplicates: %w", err)
	}

	return nil
}

// GetDuplicateRecords returns the merge provenance for one canonical
// signal, oldest merge first.
func (db *DB) GetDuplicateRecords(ctx context.Context, canonicalID string) ([]DuplicateRecord, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT canonical_id, duplicate_id, merged_at
		FROM signal_duplicates
		WHERE canonical_id = $1
		ORDER BY merged_at, duplicate_id
	`, canonicalID)
	if err != nil {
		return nil, fmt.Errorf("get duplicate records: %w", err)
	}
	defer rows.Close()

	var records []DuplicateRecord

	for rows.Next() {
		var rec DuplicateRecord
		if err := rows.Scan(&rec.CanonicalID, &rec.DuplicateID, &rec.MergedAt); err != nil {
			return nil, fmt.Errorf("scan duplicate record: %w", err)
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate duplicate records: %w", err)
	}

	return records, nil
}
