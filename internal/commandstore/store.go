// Package commandstore manages the library of saved commands: saving,
// capacity enforcement with recoverable eviction, trash expiry and restore.
package commandstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/runger/cmdvault/internal/cmdutil"
	"github.com/runger/cmdvault/internal/retention"
	"github.com/runger/cmdvault/internal/storage"
)

// Options configures a Store.
type Options struct {
	Policy retention.Policy
	Logger *slog.Logger
	Now    func() time.Time
}

// Store is the command library. Read-modify-write cycles are serialized,
// so a Store may be shared between goroutines.
type Store struct {
	db     storage.Store
	policy retention.Policy
	logger *slog.Logger
	now    func() time.Time

	mu sync.Mutex
}

// New creates a Store over db. opts may be nil.
func New(db storage.Store, opts *Options) *Store {
	if opts == nil {
		opts = &Options{Policy: retention.DefaultPolicy()}
	}
	s := &Store{
		db:     db,
		policy: opts.Policy.Normalize(),
		logger: opts.Logger,
		now:    opts.Now,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Policy returns the effective retention policy.
func (s *Store) Policy() retention.Policy { return s.policy }

func (s *Store) nowMs() int64 { return s.now().UnixMilli() }

// CapacityResult reports what EnforceCapacity did.
type CapacityResult struct {
	PurgedTrash  int
	Evicted      []storage.CommandRecord
	ActiveBefore int
	ActiveAfter  int
}

// Save stores a new command. category and name may be empty. When the
// library is at capacity, EnforceCapacity runs first. Save does not reject
// duplicates; use CommandExists beforehand.
func (s *Store) Save(ctx context.Context, text, category, name string, source storage.Source) (*storage.CommandRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveLocked(ctx, text, category, name, source, 0)
}

func (s *Store) saveLocked(ctx context.Context, text, category, name string, source storage.Source, createdAt int64) (*storage.CommandRecord, error) {
	text = cmdutil.TrimCommand(text)
	if text == "" {
		return nil, cmdutil.NewValidationError("command", "command text must not be empty")
	}
	if source == "" {
		source = storage.SourceManual
	}
	if !source.Valid() {
		return nil, cmdutil.NewValidationError("source", "unknown source %q", source)
	}

	active, err := s.db.CountCommands(ctx, storage.StateActive)
	if err != nil {
		return nil, err
	}
	if active >= s.policy.MaxCommands {
		if _, err := s.enforceCapacityLocked(ctx); err != nil {
			return nil, err
		}
	}

	now := s.nowMs()
	if createdAt <= 0 {
		createdAt = now
	}
	rec := &storage.CommandRecord{
		ID:              uuid.NewString(),
		Command:         text,
		Name:            optional(name),
		Category:        optional(category),
		Source:          source,
		CreatedAtUnixMs: createdAt,
		UpdatedAtUnixMs: now,
	}
	if err := s.db.InsertCommand(ctx, rec); err != nil {
		return nil, fmt.Errorf("save command: %w", err)
	}
	return rec, nil
}

// EnforceCapacity purges expired trash and, when the active count is at or
// above the maximum, moves the lowest-value unprotected records to the trash.
func (s *Store) EnforceCapacity(ctx context.Context) (*CapacityResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.enforceCapacityLocked(ctx)
}

func (s *Store) enforceCapacityLocked(ctx context.Context) (*CapacityResult, error) {
	result := &CapacityResult{}

	purged, err := s.emptyExpiredTrashLocked(ctx)
	if err != nil {
		return nil, err
	}
	result.PurgedTrash = purged

	active, err := s.db.ListCommands(ctx, storage.CommandQuery{State: storage.StateActive})
	if err != nil {
		return nil, err
	}
	result.ActiveBefore = len(active)
	result.ActiveAfter = len(active)

	nowMs := s.nowMs()
	victims := s.policy.PlanEviction(active, nowMs)
	if len(victims) == 0 {
		return result, nil
	}

	ids := make([]string, len(victims))
	for i := range victims {
		ids[i] = victims[i].ID
	}
	moved, err := s.db.SoftDeleteCommands(ctx, ids, nowMs)
	if err != nil {
		return nil, fmt.Errorf("evict commands: %w", err)
	}
	for i := range victims {
		victims[i].DeletedAtUnixMs = &nowMs
	}
	result.Evicted = victims
	result.ActiveAfter = len(active) - int(moved)

	s.logger.Info("capacity enforced",
		"active_before", result.ActiveBefore,
		"active_after", result.ActiveAfter,
		"evicted", moved,
		"max_commands", s.policy.MaxCommands,
	)
	return result, nil
}

// EmptyExpiredTrash permanently removes trashed records older than the
// retention period and returns how many were removed.
func (s *Store) EmptyExpiredTrash(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.emptyExpiredTrashLocked(ctx)
}

func (s *Store) emptyExpiredTrashLocked(ctx context.Context) (int, error) {
	cutoff := s.policy.TrashCutoff(s.nowMs())
	n, err := s.db.PurgeTrashBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("expired trash purged",
			"deleted", n,
			"retention_days", s.policy.TrashRetentionDays,
		)
	}
	return int(n), nil
}

// EmptyTrash permanently removes every trashed record.
func (s *Store) EmptyTrash(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trashed, err := s.db.ListCommands(ctx, storage.CommandQuery{State: storage.StateTrash})
	if err != nil {
		return 0, err
	}
	ids := make([]string, len(trashed))
	for i := range trashed {
		ids[i] = trashed[i].ID
	}
	n, err := s.db.DeleteCommands(ctx, ids)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("trash emptied", "deleted", n)
	}
	return int(n), nil
}

// Restore moves a trashed record back to the active set. It returns false
// when the record does not exist or is not in the trash.
func (s *Store) Restore(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.getLocked(ctx, id)
	if err != nil || rec == nil || !rec.IsDeleted() {
		return false, err
	}
	rec.DeletedAtUnixMs = nil
	if err := s.db.UpdateCommand(ctx, rec); err != nil {
		return false, fmt.Errorf("restore command: %w", err)
	}
	return true, nil
}

// SoftDelete moves an active record to the trash. It returns false when the
// record does not exist or is already trashed.
func (s *Store) SoftDelete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.db.SoftDeleteCommands(ctx, []string{id}, s.nowMs())
	if err != nil {
		return false, fmt.Errorf("delete command: %w", err)
	}
	return n > 0, nil
}

// DeletePermanently removes a record in any state.
func (s *Store) DeletePermanently(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.db.DeleteCommands(ctx, []string{id})
	if err != nil {
		return false, fmt.Errorf("delete command: %w", err)
	}
	return n > 0, nil
}

func (s *Store) getLocked(ctx context.Context, id string) (*storage.CommandRecord, error) {
	rec, err := s.db.GetCommand(ctx, id)
	if errors.Is(err, storage.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
