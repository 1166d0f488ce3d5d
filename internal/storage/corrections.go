package storage

import (
	"context"
	"errors"
	"fmt"
)

// InsertCorrection persists a learned prompt correction.
func (s *SQLiteStore) InsertCorrection(ctx context.Context, c *CorrectionRecord) error {
	if c == nil || c.Original == "" {
		return errors.New("correction original is required")
	}
	result, err := s.db.NamedExecContext(ctx, `
		INSERT INTO corrections (original, corrected, dialect, created_at_unix_ms)
		VALUES (:original, :corrected, :dialect, :created_at_unix_ms)
	`, c)
	if err != nil {
		return fmt.Errorf("failed to save correction: %w", err)
	}
	if id, err := result.LastInsertId(); err == nil {
		c.ID = id
	}
	return nil
}

// RecentCorrections returns the newest limit corrections, oldest first, so
// they can be replayed into a ring buffer in insertion order.
func (s *SQLiteStore) RecentCorrections(ctx context.Context, limit int) ([]CorrectionRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	var recs []CorrectionRecord
	err := s.db.SelectContext(ctx, &recs, `
		SELECT id, original, corrected, dialect, created_at_unix_ms FROM (
			SELECT * FROM corrections ORDER BY created_at_unix_ms DESC, id DESC LIMIT ?
		) ORDER BY created_at_unix_ms ASC, id ASC
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load corrections: %w", err)
	}
	return recs, nil
}
