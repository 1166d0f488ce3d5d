// Package retention decides which saved commands are evicted to the trash
// when the library is full, and when trashed commands expire.
package retention

import (
	"math"
	"sort"

	"github.com/runger/cmdvault/internal/storage"
)

// Default configuration values.
const (
	DefaultMaxCommands        = 500
	DefaultTrashRetentionDays = 90
	DefaultMostUsedThreshold  = 10
	DefaultRecentDays         = 30
	DefaultEvictionBuffer     = 10

	// MinTrashRetentionDays is the minimum allowed trash retention period.
	MinTrashRetentionDays = 1

	// MaxTrashRetentionDays is the maximum allowed trash retention period (10 years).
	MaxTrashRetentionDays = 3650
)

const dayMs = 24 * 60 * 60 * 1000

// Policy holds the capacity and trash settings.
type Policy struct {
	MaxCommands        int
	TrashRetentionDays int
	MostUsedThreshold  int
	RecentDays         int
	EvictionBuffer     int
}

// DefaultPolicy returns the default retention policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxCommands:        DefaultMaxCommands,
		TrashRetentionDays: DefaultTrashRetentionDays,
		MostUsedThreshold:  DefaultMostUsedThreshold,
		RecentDays:         DefaultRecentDays,
		EvictionBuffer:     DefaultEvictionBuffer,
	}
}

// Normalize fills zero values with defaults and clamps out-of-range values.
func (p Policy) Normalize() Policy {
	if p.MaxCommands <= 0 {
		p.MaxCommands = DefaultMaxCommands
	}
	if p.TrashRetentionDays < MinTrashRetentionDays {
		p.TrashRetentionDays = DefaultTrashRetentionDays
	}
	if p.TrashRetentionDays > MaxTrashRetentionDays {
		p.TrashRetentionDays = MaxTrashRetentionDays
	}
	if p.MostUsedThreshold <= 0 {
		p.MostUsedThreshold = DefaultMostUsedThreshold
	}
	if p.RecentDays <= 0 {
		p.RecentDays = DefaultRecentDays
	}
	if p.EvictionBuffer < 0 {
		p.EvictionBuffer = 0
	}
	return p
}

// TrashCutoff returns the deletion time before which trashed records are
// expired:
//
//	cutoff = now_ms - trash_retention_days * 86400000
func (p Policy) TrashCutoff(nowMs int64) int64 {
	return nowMs - int64(p.TrashRetentionDays)*dayMs
}

// ExpiresAt returns when a trashed record becomes eligible for purge, or 0
// for an active record.
func (p Policy) ExpiresAt(rec *storage.CommandRecord) int64 {
	if rec.DeletedAtUnixMs == nil {
		return 0
	}
	return *rec.DeletedAtUnixMs + int64(p.TrashRetentionDays)*dayMs
}

// RecentSince returns the start of the "recently used" window.
func (p Policy) RecentSince(nowMs int64) int64 {
	return nowMs - int64(p.RecentDays)*dayMs
}

// IsPreserved reports whether rec is exempt from eviction: favorites,
// records used within the recent window and records used at least
// MostUsedThreshold times.
func (p Policy) IsPreserved(rec *storage.CommandRecord, nowMs int64) bool {
	if rec.IsFavorite {
		return true
	}
	if rec.UsageCount >= int64(p.MostUsedThreshold) {
		return true
	}
	if rec.LastUsedUnixMs != nil && *rec.LastUsedUnixMs >= p.RecentSince(nowMs) {
		return true
	}
	return false
}

// Score is the eviction score of rec: usage count plus days since last use.
// Records that were never used score +Inf. Lower scores are evicted first.
func Score(rec *storage.CommandRecord, nowMs int64) float64 {
	if rec.LastUsedUnixMs == nil {
		return math.Inf(1)
	}
	days := float64(nowMs-*rec.LastUsedUnixMs) / dayMs
	return float64(rec.UsageCount) + days
}

// PlanEviction picks the active records to move to the trash. It returns
// nothing while the library is below MaxCommands. Otherwise it evicts
// active-max+buffer of the non-preserved records, lowest score first, with
// ties going to the older record.
func (p Policy) PlanEviction(active []storage.CommandRecord, nowMs int64) []storage.CommandRecord {
	if len(active) < p.MaxCommands {
		return nil
	}

	type scored struct {
		rec   storage.CommandRecord
		score float64
	}
	candidates := make([]scored, 0, len(active))
	for i := range active {
		if p.IsPreserved(&active[i], nowMs) {
			continue
		}
		candidates = append(candidates, scored{rec: active[i], score: Score(&active[i], nowMs)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score < candidates[j].score
		}
		return candidates[i].rec.CreatedAtUnixMs < candidates[j].rec.CreatedAtUnixMs
	})

	n := len(active) - p.MaxCommands + p.EvictionBuffer
	if n > len(candidates) {
		n = len(candidates)
	}
	out := make([]storage.CommandRecord, n)
	for i := 0; i < n; i++ {
		out[i] = candidates[i].rec
	}
	return out
}
