// Package maintenance runs periodic upkeep for a long-running capture
// session: expired trash is purged and the SQLite WAL is checkpointed.
package maintenance

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultInterval is the default maintenance tick interval.
const DefaultInterval = time.Hour

// TrashSweeper permanently removes trashed records past their retention.
type TrashSweeper interface {
	EmptyExpiredTrash(ctx context.Context) (int, error)
}

// Checkpointer flushes the write-ahead log into the main database file.
type Checkpointer interface {
	Checkpoint(ctx context.Context) error
}

// Config configures the maintenance runner.
type Config struct {
	// Interval is the ticker interval between maintenance passes.
	// If zero, DefaultInterval is used.
	Interval time.Duration

	// Logger is the structured logger. If nil, slog.Default() is used.
	Logger *slog.Logger
}

func (c *Config) applyDefaults() {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Stats holds cumulative maintenance statistics.
type Stats struct {
	Ticks          int64
	TrashPurged    int64
	WALCheckpoints int64
	LastTickTime   time.Time
}

// Runner executes periodic maintenance tasks.
type Runner struct {
	trash TrashSweeper
	wal   Checkpointer
	cfg   Config

	saves atomic.Int64 // records saved since last tick

	mu    sync.Mutex
	stats Stats
}

// NewRunner creates a new maintenance runner. wal may be nil.
func NewRunner(trash TrashSweeper, wal Checkpointer, cfg Config) *Runner {
	cfg.applyDefaults()
	return &Runner{
		trash: trash,
		wal:   wal,
		cfg:   cfg,
	}
}

// RecordSave notes that a record was written. The WAL is only
// checkpointed on ticks that follow writes.
func (r *Runner) RecordSave() {
	r.saves.Add(1)
}

// GetStats returns a snapshot of the maintenance statistics.
func (r *Runner) GetStats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Run starts the maintenance loop and blocks until ctx is cancelled.
// It runs one pass immediately.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.cfg.Logger.Info("maintenance runner started", "interval", r.cfg.Interval)

	r.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			r.cfg.Logger.Info("maintenance runner stopping")
			return nil
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

// tick performs a single maintenance pass.
func (r *Runner) tick(ctx context.Context) {
	r.mu.Lock()
	r.stats.Ticks++
	r.stats.LastTickTime = time.Now()
	tickNum := r.stats.Ticks
	r.mu.Unlock()

	saves := r.saves.Swap(0)
	r.cfg.Logger.Debug("maintenance tick", "tick", tickNum, "saves_since_last", saves)

	purged, err := r.trash.EmptyExpiredTrash(ctx)
	if err != nil {
		r.cfg.Logger.Warn("trash sweep failed", "error", err)
	} else if purged > 0 {
		r.mu.Lock()
		r.stats.TrashPurged += int64(purged)
		r.mu.Unlock()
	}

	if r.wal == nil || (saves == 0 && purged == 0) {
		return
	}
	if err := r.wal.Checkpoint(ctx); err != nil {
		r.cfg.Logger.Warn("WAL checkpoint failed", "error", err)
		return
	}
	r.mu.Lock()
	r.stats.WALCheckpoints++
	r.mu.Unlock()
	r.cfg.Logger.Debug("WAL checkpoint completed")
}
