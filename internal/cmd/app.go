package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/runger/cmdvault/internal/commandstore"
	"github.com/runger/cmdvault/internal/config"
	cvlog "github.com/runger/cmdvault/internal/log"
	"github.com/runger/cmdvault/internal/prompt"
	"github.com/runger/cmdvault/internal/storage"
)

// app bundles what most commands need: config, logger, database, library
// and cleaner.
type app struct {
	paths   *config.Paths
	cfg     *config.Config
	logger  *slog.Logger
	db      *storage.SQLiteStore
	library *commandstore.Store
	cleaner *prompt.Cleaner

	closeLog func() error
}

// openApp loads config and opens the database. logFile overrides the
// configured log file when non-empty.
func openApp(ctx context.Context, logFile string) (*app, error) {
	paths := config.DefaultPaths()
	cfg, err := config.LoadFromFile(paths.ConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if logFile == "" {
		logFile = cfg.Log.File
	}
	logger, closeLog, err := cvlog.Open(cfg.Log.Level, logFile)
	if err != nil {
		return nil, err
	}

	path := dbPath
	if path == "" {
		path = paths.DatabaseFile()
	}
	db, err := storage.NewSQLiteStore(path)
	if err != nil {
		cvlog.LogSQLiteError(logger, "open", err)
		_ = closeLog()
		return nil, err
	}

	a := &app{
		paths:    paths,
		cfg:      cfg,
		logger:   logger,
		db:       db,
		closeLog: closeLog,
		library: commandstore.New(db, &commandstore.Options{
			Policy: cfg.Store.Policy(),
			Logger: logger,
		}),
		cleaner: prompt.New(&prompt.Options{Logger: logger}),
	}

	if err := a.configureCleaner(ctx, cfg); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// configureCleaner applies overrides and the default shell from cfg and
// loads learned corrections.
func (a *app) configureCleaner(ctx context.Context, cfg *config.Config) error {
	for _, d := range prompt.Dialects() {
		if err := a.cleaner.ConfigureOverride(d, cfg.Overrides[d.String()]); err != nil {
			return err
		}
	}
	if cfg.Capture.DefaultShell != "" && cfg.Capture.DefaultShell != "auto" {
		a.cleaner.Detector().Override(prompt.ParseDialect(cfg.Capture.DefaultShell))
	}

	if a.cleaner.Corrections().Len() > 0 {
		return nil
	}
	recs, err := a.db.RecentCorrections(ctx, prompt.DefaultCorrectionCapacity)
	if err != nil {
		return err
	}
	list := make([]prompt.Correction, len(recs))
	for i, r := range recs {
		list[i] = prompt.Correction{
			Original:  r.Original,
			Corrected: r.Corrected,
			Dialect:   prompt.ParseDialect(r.Dialect),
			CreatedAt: time.UnixMilli(r.CreatedAtUnixMs),
		}
	}
	a.cleaner.LoadCorrections(list)
	return nil
}

// dialect resolves a --shell flag value, falling back to the configured
// default and then to detection.
func (a *app) dialect(flag string) (prompt.Dialect, error) {
	name := flag
	if name == "" || name == "auto" {
		name = a.cfg.Capture.DefaultShell
	}
	if name == "" || name == "auto" {
		return a.cleaner.Detector().Detect(), nil
	}
	d := prompt.ParseDialect(name)
	if !d.IsKnown() {
		return prompt.DialectUnknown, fmt.Errorf("unknown shell: %s", flag)
	}
	return d, nil
}

// Close releases the database and log file.
func (a *app) Close() {
	_ = a.db.Close()
	_ = a.closeLog()
}

var errAmbiguousID = errors.New("ambiguous id prefix")

// resolveRecord finds a record by full id or unique id prefix, in any state.
func (a *app) resolveRecord(ctx context.Context, ref string) (*storage.CommandRecord, error) {
	if rec, err := a.library.GetCommand(ctx, ref); err != nil || rec != nil {
		return rec, err
	}
	all, err := a.library.GetAllCommandsIncludingDeleted(ctx)
	if err != nil {
		return nil, err
	}
	var match *storage.CommandRecord
	for i := range all {
		if !strings.HasPrefix(all[i].ID, ref) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("%s: %w", ref, errAmbiguousID)
		}
		match = &all[i]
	}
	if match == nil {
		return nil, fmt.Errorf("no command with id %s", ref)
	}
	return match, nil
}
