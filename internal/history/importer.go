package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/runger/cmdvault/internal/category"
	"github.com/runger/cmdvault/internal/commandstore"
	"github.com/runger/cmdvault/internal/sanitize"
	"github.com/runger/cmdvault/internal/storage"
)

// Bookkeeping records which shells have had their history imported.
type Bookkeeping interface {
	HasImportedHistory(ctx context.Context, shell string) (bool, error)
	RecordHistoryImport(ctx context.Context, shell string, count int, atUnixMs int64) error
}

// Importer feeds parsed history into a command library.
type Importer struct {
	Library    *commandstore.Store
	Book       Bookkeeping
	Classifier *category.Classifier
	Logger     *slog.Logger
	Now        func() time.Time

	// SkipSecrets leaves out entries that carry credentials.
	SkipSecrets bool
}

// Report describes one import.
type Report struct {
	commandstore.ImportResult

	Entries int // entries read from the file
	Secrets int // entries left out because they carry credentials
}

// ImportOptions selects what Importer.Import reads.
type ImportOptions struct {
	Shell string
	Path  string // empty means DefaultPath(Shell)
	Force bool   // import even if this shell was imported before
}

// ErrAlreadyImported is returned when a shell's history was imported before
// and ImportOptions.Force is not set.
var ErrAlreadyImported = errors.New("history already imported")

// Import reads the history file and saves its commands.
func (im *Importer) Import(ctx context.Context, opts ImportOptions) (*Report, error) {
	if im.Book != nil && !opts.Force {
		done, err := im.Book.HasImportedHistory(ctx, opts.Shell)
		if err != nil {
			return nil, err
		}
		if done {
			return nil, fmt.Errorf("%s: %w", opts.Shell, ErrAlreadyImported)
		}
	}

	entries, err := ReadFile(opts.Shell, opts.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s history: %w", opts.Shell, err)
	}

	classifier := im.Classifier
	if classifier == nil {
		classifier = category.Default()
	}
	report := &Report{Entries: len(entries)}
	items := make([]commandstore.ImportItem, 0, len(entries))
	for _, e := range entries {
		if im.SkipSecrets && sanitize.ContainsSecret(e.Command) {
			report.Secrets++
			continue
		}
		item := commandstore.ImportItem{Command: e.Command}
		if tag, ok := classifier.Classify(e.Command); ok {
			item.Category = string(tag)
		}
		if !e.Timestamp.IsZero() {
			item.CreatedAtUnixMs = e.Timestamp.UnixMilli()
		}
		items = append(items, item)
	}

	result, err := im.Library.Import(ctx, items, storage.SourceImportedHistory)
	if result != nil {
		report.ImportResult = *result
	}
	if err != nil {
		return report, err
	}

	if im.Book != nil {
		now := time.Now
		if im.Now != nil {
			now = im.Now
		}
		if err := im.Book.RecordHistoryImport(ctx, opts.Shell, result.Imported, now().UnixMilli()); err != nil {
			return report, err
		}
	}
	if im.Logger != nil {
		im.Logger.Debug("history parsed", "shell", opts.Shell, "entries", len(entries), "secrets", report.Secrets)
	}
	return report, nil
}
