package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// HasImportedHistory checks if history has already been imported for the given shell.
func (s *SQLiteStore) HasImportedHistory(ctx context.Context, shell string) (bool, error) {
	var exists int
	err := s.db.GetContext(ctx, &exists, `SELECT 1 FROM history_imports WHERE shell = ? LIMIT 1`, shell)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check imported history: %w", err)
	}
	return true, nil
}

// RecordHistoryImport notes that history for shell was imported.
// A repeated import replaces the previous entry.
func (s *SQLiteStore) RecordHistoryImport(ctx context.Context, shell string, count int, atUnixMs int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO history_imports (shell, imported_count, imported_at_unix_ms)
		VALUES (?, ?, ?)
	`, shell, count, atUnixMs)
	if err != nil {
		return fmt.Errorf("failed to record history import: %w", err)
	}
	return nil
}
