package prompt

import (
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/runger/cmdvault/internal/cmdutil"
)

// Options configures a Cleaner.
type Options struct {
	// Logger receives debug output about recovery fallbacks. Nil uses slog.Default().
	Logger *slog.Logger

	// CorrectionCapacity bounds the learned-correction ring buffer.
	// Zero uses DefaultCorrectionCapacity.
	CorrectionCapacity int

	// Detector resolves the dialect for CleanAuto. Nil creates a detector
	// backed by the parent process and $SHELL.
	Detector *Detector

	// Now stamps learned corrections. Nil uses time.Now.
	Now func() time.Time
}

// Result is the detailed outcome of one cleaning call.
type Result struct {
	Command string
	Dialect Dialect

	// Valid is false when every strategy failed and Command is the
	// best-effort collapsed text.
	Valid bool

	// Recovery names the recovery strategy that produced Command, if any.
	Recovery string

	UsedCorrection bool
	UsedOverride   bool
}

// Cleaner turns raw terminal lines into bare commands. It is safe for
// concurrent use.
type Cleaner struct {
	logger      *slog.Logger
	now         func() time.Time
	detector    *Detector
	corrections *Corrections
	analytics   *Analytics

	mu        sync.RWMutex
	overrides map[Dialect]*regexp.Regexp
}

// New creates a Cleaner. opts may be nil.
func New(opts *Options) *Cleaner {
	if opts == nil {
		opts = &Options{}
	}
	c := &Cleaner{
		logger:      opts.Logger,
		now:         opts.Now,
		detector:    opts.Detector,
		corrections: NewCorrections(opts.CorrectionCapacity),
		analytics:   NewAnalytics(),
		overrides:   make(map[Dialect]*regexp.Regexp),
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.detector == nil {
		c.detector = NewDetector(
			WithIntrospector(NewProcessIntrospector()),
			WithLaunchParams(LaunchParamsFromEnv()),
		)
	}
	return c
}

// Detector returns the dialect detector used by CleanAuto.
func (c *Cleaner) Detector() *Detector { return c.detector }

// Corrections returns the learned-correction buffer.
func (c *Cleaner) Corrections() *Corrections { return c.corrections }

// Analytics returns the cleaner's counters.
func (c *Cleaner) Analytics() *Analytics { return c.analytics }

// Clean strips prompt decoration from raw for dialect d. It never fails:
// when nothing validates, the whitespace-collapsed text is returned.
func (c *Cleaner) Clean(raw string, d Dialect) string {
	return c.CleanDetailed(raw, d).Command
}

// CleanAuto cleans raw using the detected dialect.
func (c *Cleaner) CleanAuto(raw string) string {
	return c.Clean(raw, c.detector.Detect())
}

// CleanDetailed is Clean with the full outcome.
func (c *Cleaner) CleanDetailed(raw string, d Dialect) Result {
	if d == "" {
		d = DialectUnknown
	}
	res := c.clean(raw, d)
	c.analytics.record(d, res)
	return res
}

func (c *Cleaner) clean(raw string, d Dialect) Result {
	res := Result{Dialect: d}

	text := strings.TrimSpace(raw)
	text, res.UsedCorrection = c.corrections.Apply(text, d)
	text = joinContinuations(text)

	if re := c.override(d); re != nil {
		out, _ := stripFirst(re, text)
		res.Command = strings.TrimSpace(out)
		res.UsedOverride = true
		res.Valid = true
		return res
	}

	stripped, _ := stripDialect(text, d)
	collapsed := cmdutil.CollapseWhitespace(stripped)
	if isValidCommand(collapsed) {
		res.Command = collapsed
		res.Valid = true
		return res
	}

	for _, s := range recoveryStrategies {
		candidate, ok := s.Recover(text)
		if !ok {
			continue
		}
		candidate = cmdutil.CollapseWhitespace(candidate)
		if isValidCommand(candidate) {
			c.logger.Debug("prompt recovered",
				"dialect", d.String(),
				"strategy", s.Name,
			)
			res.Command = candidate
			res.Recovery = s.Name
			res.Valid = true
			return res
		}
	}

	c.logger.Debug("prompt recovery exhausted", "dialect", d.String(), "length", len(text))
	res.Command = collapsed
	return res
}

// joinContinuations joins lines ending in a backslash with the following
// line and returns the last resulting line.
func joinContinuations(text string) string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var lines []string
	var pending string
	continuing := false
	for _, line := range raw {
		line = strings.TrimRight(line, "\r")
		if continuing {
			line = pending + " " + strings.TrimSpace(line)
			continuing = false
		}
		trimmed := strings.TrimRight(line, " \t")
		if strings.HasSuffix(trimmed, `\`) {
			pending = strings.TrimRight(strings.TrimSuffix(trimmed, `\`), " \t")
			continuing = true
			continue
		}
		lines = append(lines, line)
	}
	if continuing {
		lines = append(lines, pending)
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}

// LearnCorrection records that original should read corrected in dialect d.
func (c *Cleaner) LearnCorrection(original, corrected string, d Dialect) (Correction, error) {
	if strings.TrimSpace(original) == "" {
		return Correction{}, cmdutil.NewValidationError("original", "correction source must not be empty")
	}
	corr := Correction{
		Original:  original,
		Corrected: corrected,
		Dialect:   d,
		CreatedAt: c.now(),
	}
	c.corrections.Add(corr)
	return corr, nil
}

// LoadCorrections adds previously persisted corrections, oldest first.
func (c *Cleaner) LoadCorrections(list []Correction) {
	for _, corr := range list {
		c.corrections.Add(corr)
	}
}

// ValidateOverridePattern compiles pattern and reports a ValidationError
// naming the config key if it is not a valid regular expression.
func ValidateOverridePattern(d Dialect, pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, cmdutil.NewValidationError("overrides."+d.String(), "invalid pattern: %v", err)
	}
	return re, nil
}

// ConfigureOverride installs a user pattern for d that replaces the built-in
// stripping. An empty pattern removes the override.
func (c *Cleaner) ConfigureOverride(d Dialect, pattern string) error {
	if !d.IsKnown() && d != DialectUnknown {
		return cmdutil.NewValidationError("overrides."+d.String(), "unknown shell dialect")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if pattern == "" {
		delete(c.overrides, d)
		return nil
	}
	re, err := ValidateOverridePattern(d, pattern)
	if err != nil {
		return err
	}
	c.overrides[d] = re
	return nil
}

// Overrides returns the configured override patterns by dialect name.
func (c *Cleaner) Overrides() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]string, len(c.overrides))
	for d, re := range c.overrides {
		out[d.String()] = re.String()
	}
	return out
}

func (c *Cleaner) override(d Dialect) *regexp.Regexp {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.overrides[d]
}
