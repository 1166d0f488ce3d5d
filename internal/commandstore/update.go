package commandstore

import (
	"context"
	"fmt"

	"github.com/runger/cmdvault/internal/cmdutil"
	"github.com/runger/cmdvault/internal/storage"
)

// RecordUpdate lists the fields UpdateCommand merges into a record.
// Nil fields are left unchanged. An empty Name or Category clears it.
type RecordUpdate struct {
	Command         *string
	Name            *string
	Category        *string
	IsFavorite      *bool
	UsageCount      *int64
	LastUsedUnixMs  *int64
	DeletedAtUnixMs *int64
	ClearDeletedAt  bool
}

// UpdateCommand merges u into the record with the given id and refreshes its
// modification time. It returns nil when the record does not exist.
func (s *Store) UpdateCommand(ctx context.Context, id string, u RecordUpdate) (*storage.CommandRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateLocked(ctx, id, func(rec *storage.CommandRecord) error {
		return u.apply(rec)
	})
}

func (u RecordUpdate) apply(rec *storage.CommandRecord) error {
	if u.Command != nil {
		text := cmdutil.TrimCommand(*u.Command)
		if text == "" {
			return cmdutil.NewValidationError("command", "command text must not be empty")
		}
		rec.Command = text
	}
	if u.Name != nil {
		rec.Name = optional(*u.Name)
	}
	if u.Category != nil {
		rec.Category = optional(*u.Category)
	}
	if u.IsFavorite != nil {
		rec.IsFavorite = *u.IsFavorite
	}
	if u.UsageCount != nil {
		if *u.UsageCount < 0 {
			return cmdutil.NewValidationError("usage_count", "must not be negative")
		}
		rec.UsageCount = *u.UsageCount
	}
	if u.LastUsedUnixMs != nil {
		v := *u.LastUsedUnixMs
		rec.LastUsedUnixMs = &v
	}
	if u.DeletedAtUnixMs != nil {
		v := *u.DeletedAtUnixMs
		rec.DeletedAtUnixMs = &v
	}
	if u.ClearDeletedAt {
		rec.DeletedAtUnixMs = nil
	}
	return nil
}

// RecordUsage increments the usage count and stamps the last-used time.
func (s *Store) RecordUsage(ctx context.Context, id string) (*storage.CommandRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowMs()
	return s.updateLocked(ctx, id, func(rec *storage.CommandRecord) error {
		rec.UsageCount++
		rec.LastUsedUnixMs = &now
		return nil
	})
}

// ToggleFavorite flips the favorite flag.
func (s *Store) ToggleFavorite(ctx context.Context, id string) (*storage.CommandRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateLocked(ctx, id, func(rec *storage.CommandRecord) error {
		rec.IsFavorite = !rec.IsFavorite
		return nil
	})
}

func (s *Store) updateLocked(ctx context.Context, id string, mutate func(*storage.CommandRecord) error) (*storage.CommandRecord, error) {
	rec, err := s.getLocked(ctx, id)
	if err != nil || rec == nil {
		return nil, err
	}
	if err := mutate(rec); err != nil {
		return nil, err
	}
	rec.UpdatedAtUnixMs = s.nowMs()
	if err := s.db.UpdateCommand(ctx, rec); err != nil {
		return nil, fmt.Errorf("update command: %w", err)
	}
	return rec, nil
}
