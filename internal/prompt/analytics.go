package prompt

import (
	"sync"
	"sync/atomic"
)

// Analytics holds process-lifetime counters for the cleaning pipeline.
// Counters are never persisted.
type Analytics struct {
	attempts       atomic.Int64 // every Clean call
	successes      atomic.Int64 // calls that produced a valid command
	failures       atomic.Int64 // calls that fell back to the best-effort text
	recoveryUses   atomic.Int64 // successes that needed a recovery strategy
	correctionUses atomic.Int64 // calls where a learned correction was applied
	overrideUses   atomic.Int64 // calls answered by a user override pattern

	mu         sync.Mutex
	perDialect map[Dialect]int64
}

// AnalyticsSnapshot is a point-in-time copy of Analytics.
type AnalyticsSnapshot struct {
	Attempts       int64
	Successes      int64
	Failures       int64
	RecoveryUses   int64
	CorrectionUses int64
	OverrideUses   int64
	PerDialect     map[Dialect]int64
}

// NewAnalytics returns zeroed counters.
func NewAnalytics() *Analytics {
	return &Analytics{perDialect: make(map[Dialect]int64)}
}

func (a *Analytics) record(d Dialect, res Result) {
	a.attempts.Add(1)
	if res.Valid {
		a.successes.Add(1)
	} else {
		a.failures.Add(1)
	}
	if res.Recovery != "" && res.Valid {
		a.recoveryUses.Add(1)
	}
	if res.UsedCorrection {
		a.correctionUses.Add(1)
	}
	if res.UsedOverride {
		a.overrideUses.Add(1)
	}

	a.mu.Lock()
	a.perDialect[d]++
	a.mu.Unlock()
}

// Snapshot returns a copy of all counters. Individual fields are consistent;
// the snapshot as a whole is not transactional.
func (a *Analytics) Snapshot() AnalyticsSnapshot {
	a.mu.Lock()
	per := make(map[Dialect]int64, len(a.perDialect))
	for d, n := range a.perDialect {
		per[d] = n
	}
	a.mu.Unlock()

	return AnalyticsSnapshot{
		Attempts:       a.attempts.Load(),
		Successes:      a.successes.Load(),
		Failures:       a.failures.Load(),
		RecoveryUses:   a.recoveryUses.Load(),
		CorrectionUses: a.correctionUses.Load(),
		OverrideUses:   a.overrideUses.Load(),
		PerDialect:     per,
	}
}

// Reset zeroes every counter.
func (a *Analytics) Reset() {
	a.attempts.Store(0)
	a.successes.Store(0)
	a.failures.Store(0)
	a.recoveryUses.Store(0)
	a.correctionUses.Store(0)
	a.overrideUses.Store(0)

	a.mu.Lock()
	a.perDialect = make(map[Dialect]int64)
	a.mu.Unlock()
}

// SuccessRate returns successes/attempts in [0, 1], or 0 before any attempt.
func (s AnalyticsSnapshot) SuccessRate() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.Successes) / float64(s.Attempts)
}
