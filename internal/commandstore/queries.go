package commandstore

import (
	"context"

	"github.com/runger/cmdvault/internal/storage"
)

const dayMs = 24 * 60 * 60 * 1000

// TrashStats summarizes the trash for display.
type TrashStats struct {
	Count         int
	OldestAgeDays int // age of the oldest trashed record, 0 when empty
}

// GetCommand returns the record with id in any state, or nil.
func (s *Store) GetCommand(ctx context.Context, id string) (*storage.CommandRecord, error) {
	return s.getLocked(ctx, id)
}

// GetAllCommands returns active records, newest first.
func (s *Store) GetAllCommands(ctx context.Context) ([]storage.CommandRecord, error) {
	return s.db.ListCommands(ctx, storage.CommandQuery{State: storage.StateActive})
}

// GetDeletedCommands returns trashed records, most recently deleted first.
func (s *Store) GetDeletedCommands(ctx context.Context) ([]storage.CommandRecord, error) {
	return s.db.ListCommands(ctx, storage.CommandQuery{State: storage.StateTrash})
}

// GetAllCommandsIncludingDeleted returns every record, newest first.
func (s *Store) GetAllCommandsIncludingDeleted(ctx context.Context) ([]storage.CommandRecord, error) {
	return s.db.ListCommands(ctx, storage.CommandQuery{State: storage.StateAll})
}

// GetCommandsByCategory returns active records tagged category.
func (s *Store) GetCommandsByCategory(ctx context.Context, category string) ([]storage.CommandRecord, error) {
	return s.db.ListCommands(ctx, storage.CommandQuery{Category: category})
}

// GetMostUsedCommands returns active records used at least the most-used
// threshold number of times.
func (s *Store) GetMostUsedCommands(ctx context.Context) ([]storage.CommandRecord, error) {
	return s.db.ListCommands(ctx, storage.CommandQuery{MinUsage: int64(s.policy.MostUsedThreshold)})
}

// GetRecentCommands returns active records used within the recent window.
func (s *Store) GetRecentCommands(ctx context.Context) ([]storage.CommandRecord, error) {
	return s.db.ListCommands(ctx, storage.CommandQuery{UsedSinceMs: s.policy.RecentSince(s.nowMs())})
}

// CommandExists reports whether an active record has exactly the trimmed text.
func (s *Store) CommandExists(ctx context.Context, text string) (bool, error) {
	return s.db.ActiveCommandExists(ctx, text)
}

// GetCommandCount returns the number of active records.
func (s *Store) GetCommandCount(ctx context.Context) (int, error) {
	return s.db.CountCommands(ctx, storage.StateActive)
}

// GetTrashStats returns the trash size and the age of its oldest entry.
func (s *Store) GetTrashStats(ctx context.Context) (TrashStats, error) {
	raw, err := s.db.TrashStats(ctx)
	if err != nil {
		return TrashStats{}, err
	}
	stats := TrashStats{Count: raw.Count}
	if raw.OldestDeletedAtUnixMs != nil {
		stats.OldestAgeDays = int((s.nowMs() - *raw.OldestDeletedAtUnixMs) / dayMs)
	}
	return stats, nil
}
