// Package storage provides SQLite-based persistent storage for cmdvault.
// It handles saved commands, learned prompt corrections and history-import
// bookkeeping.
package storage

import (
	"context"
	"errors"
)

// ErrRecordNotFound is returned when a record does not exist.
var ErrRecordNotFound = errors.New("record not found")

// Store defines the interface for all storage operations.
type Store interface {
	// Commands
	InsertCommand(ctx context.Context, rec *CommandRecord) error
	UpdateCommand(ctx context.Context, rec *CommandRecord) error
	GetCommand(ctx context.Context, id string) (*CommandRecord, error)
	ListCommands(ctx context.Context, q CommandQuery) ([]CommandRecord, error)
	CountCommands(ctx context.Context, state RecordState) (int, error)
	ActiveCommandExists(ctx context.Context, command string) (bool, error)
	SoftDeleteCommands(ctx context.Context, ids []string, deletedAtUnixMs int64) (int64, error)
	DeleteCommands(ctx context.Context, ids []string) (int64, error)
	PurgeTrashBefore(ctx context.Context, cutoffUnixMs int64) (int64, error)
	TrashStats(ctx context.Context) (TrashStats, error)

	// Corrections
	InsertCorrection(ctx context.Context, c *CorrectionRecord) error
	RecentCorrections(ctx context.Context, limit int) ([]CorrectionRecord, error)

	// History import bookkeeping
	HasImportedHistory(ctx context.Context, shell string) (bool, error)
	RecordHistoryImport(ctx context.Context, shell string, count int, atUnixMs int64) error

	// Maintenance
	Checkpoint(ctx context.Context) error

	// Lifecycle
	Close() error
}

// Source records how a command entered the library.
type Source string

const (
	SourceManual           Source = "manual"
	SourceAutoCapture      Source = "auto-capture"
	SourceImportedHistory  Source = "imported-history"
	SourcePreparedTemplate Source = "prepared-template"
)

// Valid reports whether s is one of the known sources.
func (s Source) Valid() bool {
	switch s {
	case SourceManual, SourceAutoCapture, SourceImportedHistory, SourcePreparedTemplate:
		return true
	}
	return false
}

// CommandRecord is a saved command. A non-nil DeletedAtUnixMs means the
// record is in the trash.
type CommandRecord struct {
	ID              string  `db:"id"`
	Command         string  `db:"command"`
	CommandHash     string  `db:"command_hash"`
	Name            *string `db:"name"`
	Category        *string `db:"category"`
	Source          Source  `db:"source"`
	UsageCount      int64   `db:"usage_count"`
	IsFavorite      bool    `db:"is_favorite"`
	CreatedAtUnixMs int64   `db:"created_at_unix_ms"`
	UpdatedAtUnixMs int64   `db:"updated_at_unix_ms"`
	LastUsedUnixMs  *int64  `db:"last_used_unix_ms"`
	DeletedAtUnixMs *int64  `db:"deleted_at_unix_ms"`
}

// IsDeleted reports whether the record is in the trash.
func (r *CommandRecord) IsDeleted() bool {
	return r.DeletedAtUnixMs != nil
}

// RecordState selects active records, trashed records, or both.
type RecordState int

const (
	StateActive RecordState = iota
	StateTrash
	StateAll
)

// CommandQuery defines parameters for listing commands.
type CommandQuery struct {
	State       RecordState
	Category    string // exact match; empty means any
	MinUsage    int64  // only records used at least this often
	UsedSinceMs int64  // only records last used at or after this time; 0 means any
	Favorites   bool   // only favorites
	Limit       int
}

// TrashStats summarizes the trash.
type TrashStats struct {
	Count                 int    `db:"count"`
	OldestDeletedAtUnixMs *int64 `db:"oldest"`
}

// CorrectionRecord is a persisted learned prompt correction.
type CorrectionRecord struct {
	ID              int64  `db:"id"`
	Original        string `db:"original"`
	Corrected       string `db:"corrected"`
	Dialect         string `db:"dialect"`
	CreatedAtUnixMs int64  `db:"created_at_unix_ms"`
}
