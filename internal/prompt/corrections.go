package prompt

import (
	"strings"
	"sync"
	"time"
)

// DefaultCorrectionCapacity is the number of learned corrections kept.
const DefaultCorrectionCapacity = 100

// Correction is a user-confirmed fix for a previous misclean: whenever
// Original appears in a line of the same dialect it is replaced by Corrected.
type Correction struct {
	Original  string
	Corrected string
	Dialect   Dialect
	CreatedAt time.Time
}

// Corrections is a fixed-capacity FIFO ring buffer of learned corrections.
// When full, adding a correction evicts the oldest one.
type Corrections struct {
	mu    sync.Mutex
	buf   []Correction
	head  int // index of the oldest entry
	count int
}

// NewCorrections creates a ring buffer holding at most capacity entries.
// A non-positive capacity uses DefaultCorrectionCapacity.
func NewCorrections(capacity int) *Corrections {
	if capacity <= 0 {
		capacity = DefaultCorrectionCapacity
	}
	return &Corrections{buf: make([]Correction, capacity)}
}

// Add appends c, evicting the oldest entry if the buffer is full.
func (r *Corrections) Add(c Correction) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count < len(r.buf) {
		r.buf[(r.head+r.count)%len(r.buf)] = c
		r.count++
		return
	}
	r.buf[r.head] = c
	r.head = (r.head + 1) % len(r.buf)
}

// Len returns the number of stored corrections.
func (r *Corrections) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Cap returns the buffer capacity.
func (r *Corrections) Cap() int {
	return len(r.buf)
}

// All returns the stored corrections, oldest first.
func (r *Corrections) All() []Correction {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Correction, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	return out
}

// Apply scans the corrections for dialect d from newest to oldest and
// replaces the first occurrence of the first matching Original.
// Only one substitution is ever made.
func (r *Corrections) Apply(text string, d Dialect) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := r.count - 1; i >= 0; i-- {
		c := r.buf[(r.head+i)%len(r.buf)]
		if c.Dialect != d || c.Original == "" {
			continue
		}
		if strings.Contains(text, c.Original) {
			return strings.Replace(text, c.Original, c.Corrected, 1), true
		}
	}
	return text, false
}
