package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/runger/cmdvault/internal/cmdutil"
)

const commandColumns = `
	id, command, command_hash, name, category, source, usage_count, is_favorite,
	created_at_unix_ms, updated_at_unix_ms, last_used_unix_ms, deleted_at_unix_ms`

// InsertCommand creates a new command record.
// The command hash is derived from the trimmed command text.
func (s *SQLiteStore) InsertCommand(ctx context.Context, rec *CommandRecord) error {
	if rec == nil {
		return errors.New("command cannot be nil")
	}
	if rec.ID == "" {
		return errors.New("id is required")
	}
	rec.Command = cmdutil.TrimCommand(rec.Command)
	if rec.Command == "" {
		return errors.New("command is required")
	}
	if rec.Source == "" {
		rec.Source = SourceManual
	}
	rec.CommandHash = cmdutil.HashCommand(rec.Command)

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO commands (`+commandColumns+`)
		VALUES (
			:id, :command, :command_hash, :name, :category, :source, :usage_count, :is_favorite,
			:created_at_unix_ms, :updated_at_unix_ms, :last_used_unix_ms, :deleted_at_unix_ms
		)
	`, rec)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("command with id %s already exists", rec.ID)
		}
		return fmt.Errorf("failed to create command: %w", err)
	}
	return nil
}

// UpdateCommand overwrites every mutable column of the record with rec.ID.
func (s *SQLiteStore) UpdateCommand(ctx context.Context, rec *CommandRecord) error {
	if rec == nil || rec.ID == "" {
		return errors.New("id is required")
	}
	rec.Command = cmdutil.TrimCommand(rec.Command)
	if rec.Command == "" {
		return errors.New("command is required")
	}
	rec.CommandHash = cmdutil.HashCommand(rec.Command)

	result, err := s.db.NamedExecContext(ctx, `
		UPDATE commands SET
			command = :command,
			command_hash = :command_hash,
			name = :name,
			category = :category,
			source = :source,
			usage_count = :usage_count,
			is_favorite = :is_favorite,
			updated_at_unix_ms = :updated_at_unix_ms,
			last_used_unix_ms = :last_used_unix_ms,
			deleted_at_unix_ms = :deleted_at_unix_ms
		WHERE id = :id
	`, rec)
	if err != nil {
		return fmt.Errorf("failed to update command: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// GetCommand returns the record with the given id, active or trashed.
func (s *SQLiteStore) GetCommand(ctx context.Context, id string) (*CommandRecord, error) {
	var rec CommandRecord
	err := s.db.GetContext(ctx, &rec, `SELECT `+commandColumns+` FROM commands WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get command: %w", err)
	}
	return &rec, nil
}

// ListCommands returns commands matching q. Active and combined listings are
// newest first; trash listings are most recently deleted first.
func (s *SQLiteStore) ListCommands(ctx context.Context, q CommandQuery) ([]CommandRecord, error) {
	var (
		where []string
		args  []any
	)
	where = append(where, stateClause(q.State))
	if q.Category != "" {
		where = append(where, "category = ?")
		args = append(args, q.Category)
	}
	if q.MinUsage > 0 {
		where = append(where, "usage_count >= ?")
		args = append(args, q.MinUsage)
	}
	if q.UsedSinceMs > 0 {
		where = append(where, "last_used_unix_ms >= ?")
		args = append(args, q.UsedSinceMs)
	}
	if q.Favorites {
		where = append(where, "is_favorite = 1")
	}

	query := `SELECT ` + commandColumns + ` FROM commands WHERE ` + strings.Join(where, " AND ")
	if q.State == StateTrash {
		query += ` ORDER BY deleted_at_unix_ms DESC, rowid DESC`
	} else {
		query += ` ORDER BY created_at_unix_ms DESC, rowid DESC`
	}
	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	var recs []CommandRecord
	if err := s.db.SelectContext(ctx, &recs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list commands: %w", err)
	}
	return recs, nil
}

// CountCommands counts records in the given state.
func (s *SQLiteStore) CountCommands(ctx context.Context, state RecordState) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM commands WHERE `+stateClause(state)); err != nil {
		return 0, fmt.Errorf("failed to count commands: %w", err)
	}
	return n, nil
}

// ActiveCommandExists reports whether an active record has exactly the
// trimmed command text.
func (s *SQLiteStore) ActiveCommandExists(ctx context.Context, command string) (bool, error) {
	command = cmdutil.TrimCommand(command)
	if command == "" {
		return false, nil
	}
	var exists int
	err := s.db.GetContext(ctx, &exists, `
		SELECT 1 FROM commands
		WHERE command_hash = ? AND command = ? AND deleted_at_unix_ms IS NULL
		LIMIT 1
	`, cmdutil.HashCommand(command), command)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check command: %w", err)
	}
	return true, nil
}

// SoftDeleteCommands moves the given active records to the trash.
// It returns the number of records moved.
func (s *SQLiteStore) SoftDeleteCommands(ctx context.Context, ids []string, deletedAtUnixMs int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`
		UPDATE commands SET deleted_at_unix_ms = ?
		WHERE deleted_at_unix_ms IS NULL AND id IN (?)
	`, deletedAtUnixMs, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to build soft delete: %w", err)
	}
	result, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to soft delete commands: %w", err)
	}
	return result.RowsAffected()
}

// DeleteCommands permanently removes the given records in any state.
func (s *SQLiteStore) DeleteCommands(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`DELETE FROM commands WHERE id IN (?)`, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to build delete: %w", err)
	}
	result, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete commands: %w", err)
	}
	return result.RowsAffected()
}

// PurgeTrashBefore permanently removes trashed records deleted strictly
// before cutoffUnixMs.
func (s *SQLiteStore) PurgeTrashBefore(ctx context.Context, cutoffUnixMs int64) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM commands
		WHERE deleted_at_unix_ms IS NOT NULL AND deleted_at_unix_ms < ?
	`, cutoffUnixMs)
	if err != nil {
		return 0, fmt.Errorf("failed to purge trash: %w", err)
	}
	return result.RowsAffected()
}

// TrashStats returns the trash size and the oldest deletion time.
func (s *SQLiteStore) TrashStats(ctx context.Context) (TrashStats, error) {
	var stats TrashStats
	err := s.db.GetContext(ctx, &stats, `
		SELECT COUNT(*) AS count, MIN(deleted_at_unix_ms) AS oldest
		FROM commands WHERE deleted_at_unix_ms IS NOT NULL
	`)
	if err != nil {
		return TrashStats{}, fmt.Errorf("failed to read trash stats: %w", err)
	}
	return stats, nil
}

func stateClause(state RecordState) string {
	switch state {
	case StateTrash:
		return "deleted_at_unix_ms IS NOT NULL"
	case StateAll:
		return "1 = 1"
	default:
		return "deleted_at_unix_ms IS NULL"
	}
}

// isDuplicateKeyError checks if the error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "PRIMARY KEY")
}
