package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// DetectionTTL is how long a detected dialect is trusted before it is
// revalidated.
const DetectionTTL = 30 * time.Second

// Introspector asks the environment which shell the user is running.
// It returns DialectUnknown (and possibly an error) when it cannot tell.
type Introspector interface {
	Dialect() (Dialect, error)
}

// LaunchParams describes how the hosting shell was launched.
type LaunchParams struct {
	ShellPath string
	ShellArgs []string
}

// LaunchParamsFromEnv builds LaunchParams from $SHELL (or %ComSpec% when
// $SHELL is unset).
func LaunchParamsFromEnv() LaunchParams {
	if sh := os.Getenv("SHELL"); sh != "" {
		return LaunchParams{ShellPath: sh}
	}
	return LaunchParams{ShellPath: os.Getenv("ComSpec")}
}

// launchHeuristics are checked in order; the first substring hit wins.
// pwsh and cmd come first because their names are the least ambiguous.
var launchHeuristics = []struct {
	needle  string
	dialect Dialect
}{
	{"pwsh", DialectPowerShell},
	{"powershell", DialectPowerShell},
	{"cmd.exe", DialectCmd},
	{"zsh", DialectZsh},
	{"fish", DialectFish},
	{"bash", DialectBash},
}

// DialectFromLaunchParams guesses a dialect from the shell path and arguments.
func DialectFromLaunchParams(p LaunchParams) Dialect {
	path := strings.ToLower(p.ShellPath)
	base := filepath.Base(strings.ReplaceAll(path, "\\", "/"))
	if base == "cmd" {
		return DialectCmd
	}
	haystack := path + " " + strings.ToLower(strings.Join(p.ShellArgs, " "))
	for _, h := range launchHeuristics {
		if strings.Contains(haystack, h.needle) {
			return h.dialect
		}
	}
	return DialectUnknown
}

// Detector caches the dialect of the current terminal.
type Detector struct {
	introspector Introspector
	params       LaunchParams
	ttl          time.Duration
	now          func() time.Time

	mu         sync.Mutex
	cached     Dialect
	detectedAt time.Time
	valid      bool
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithIntrospector sets the collaborator consulted before launch heuristics.
func WithIntrospector(i Introspector) DetectorOption {
	return func(d *Detector) { d.introspector = i }
}

// WithLaunchParams sets the launch parameters used by the heuristics.
func WithLaunchParams(p LaunchParams) DetectorOption {
	return func(d *Detector) { d.params = p }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) DetectorOption {
	return func(d *Detector) { d.now = now }
}

// NewDetector creates a Detector with the given options.
func NewDetector(opts ...DetectorOption) *Detector {
	d := &Detector{ttl: DetectionTTL, now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect returns the cached dialect while fresh, otherwise re-detects.
func (d *Detector) Detect() Dialect {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if d.valid && now.Sub(d.detectedAt) < d.ttl {
		return d.cached
	}

	dialect := DialectUnknown
	if d.introspector != nil {
		if got, err := d.introspector.Dialect(); err == nil && got.IsKnown() {
			dialect = got
		}
	}
	if dialect == DialectUnknown {
		dialect = DialectFromLaunchParams(d.params)
	}

	d.cached = dialect
	d.detectedAt = now
	d.valid = true
	return dialect
}

// Override pins the dialect immediately. It still expires after the TTL.
func (d *Detector) Override(dialect Dialect) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cached = dialect
	d.detectedAt = d.now()
	d.valid = true
}

// Invalidate drops the cached dialect.
func (d *Detector) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.valid = false
	d.cached = DialectUnknown
}
