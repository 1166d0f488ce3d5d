// Package capture turns raw terminal lines into saved library records:
// escape sequences are stripped and the prompt is cleaned off. Short,
// duplicate and credential-bearing commands are dropped and the rest is
// classified and saved.
package capture

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/runger/cmdvault/internal/category"
	"github.com/runger/cmdvault/internal/cmdutil"
	"github.com/runger/cmdvault/internal/commandstore"
	"github.com/runger/cmdvault/internal/prompt"
	"github.com/runger/cmdvault/internal/sanitize"
	"github.com/runger/cmdvault/internal/storage"
)

// Outcome says what happened to a captured line.
type Outcome string

const (
	OutcomeSaved     Outcome = "saved"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeTooShort  Outcome = "too-short"
	OutcomeInvalid   Outcome = "invalid"
	OutcomeSecret    Outcome = "secret"
)

// Options tune the pipeline. They can be swapped at runtime with SetOptions.
type Options struct {
	// Dialect forces the prompt dialect. DialectUnknown detects it.
	Dialect prompt.Dialect

	// MinCommandLength drops cleaned commands shorter than this many bytes.
	MinCommandLength int

	// SkipDuplicates drops commands already in the active library.
	SkipDuplicates bool

	// SkipSecrets drops commands that contain credentials.
	SkipSecrets bool
}

// Result describes one captured line. For OutcomeSecret, Command is the
// redacted text.
type Result struct {
	Outcome  Outcome
	Command  string
	Category string
	Dialect  prompt.Dialect
	Recovery string
	Record   *storage.CommandRecord // set when Outcome is OutcomeSaved
}

// Pipeline is safe for concurrent use.
type Pipeline struct {
	cleaner    *prompt.Cleaner
	library    *commandstore.Store
	classifier *category.Classifier
	logger     *slog.Logger

	mu     sync.RWMutex
	opts   Options
	onSave func(*storage.CommandRecord)
}

// New creates a Pipeline. A nil logger uses slog.Default().
func New(cleaner *prompt.Cleaner, library *commandstore.Store, opts Options, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		cleaner:    cleaner,
		library:    library,
		classifier: category.Default(),
		logger:     logger,
		opts:       opts,
	}
}

// Options returns the current options.
func (p *Pipeline) Options() Options {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.opts
}

// SetOptions replaces the options for subsequent captures.
func (p *Pipeline) SetOptions(opts Options) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opts = opts
}

// OnSave registers fn to be called after every saved record.
func (p *Pipeline) OnSave(fn func(*storage.CommandRecord)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onSave = fn
}

// Capture runs raw through the pipeline. Only storage failures are errors;
// rejected lines are reported through Result.Outcome.
func (p *Pipeline) Capture(ctx context.Context, raw string) (Result, error) {
	p.mu.RLock()
	opts := p.opts
	onSave := p.onSave
	p.mu.RUnlock()

	d := opts.Dialect
	if !d.IsKnown() {
		d = p.cleaner.Detector().Detect()
	}

	cleaned := p.cleaner.CleanDetailed(prompt.StripANSI(raw), d)
	res := Result{
		Command:  cleaned.Command,
		Dialect:  cleaned.Dialect,
		Recovery: cleaned.Recovery,
	}

	if len(res.Command) < opts.MinCommandLength || res.Command == "" {
		res.Outcome = OutcomeTooShort
		return res, nil
	}
	if !cleaned.Valid {
		res.Outcome = OutcomeInvalid
		p.logger.Debug("capture rejected", "reason", "invalid", "text", cmdutil.Truncate(sanitize.Redact(res.Command), 50))
		return res, nil
	}
	if opts.SkipSecrets && sanitize.ContainsSecret(res.Command) {
		res.Outcome = OutcomeSecret
		res.Command = sanitize.Redact(res.Command)
		p.logger.Debug("capture rejected", "reason", "secret", "text", cmdutil.Truncate(res.Command, 50))
		return res, nil
	}

	if tag, ok := p.classifier.Classify(res.Command); ok {
		res.Category = string(tag)
	}

	if opts.SkipDuplicates {
		exists, err := p.library.CommandExists(ctx, res.Command)
		if err != nil {
			return res, fmt.Errorf("failed to check duplicate: %w", err)
		}
		if exists {
			res.Outcome = OutcomeDuplicate
			return res, nil
		}
	}

	rec, err := p.library.Save(ctx, res.Command, res.Category, "", storage.SourceAutoCapture)
	if err != nil {
		return res, fmt.Errorf("failed to save capture: %w", err)
	}
	res.Outcome = OutcomeSaved
	res.Record = rec

	p.logger.Debug("command captured",
		"id", rec.ID,
		"dialect", res.Dialect.String(),
		"category", res.Category,
		"command", cmdutil.Truncate(sanitize.Redact(res.Command), 50),
	)
	if onSave != nil {
		onSave(rec)
	}
	return res, nil
}
