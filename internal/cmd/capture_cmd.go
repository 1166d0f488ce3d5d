package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/runger/cmdvault/internal/capture"
	"github.com/runger/cmdvault/internal/config"
	cvlog "github.com/runger/cmdvault/internal/log"
	"github.com/runger/cmdvault/internal/maintenance"
	"github.com/runger/cmdvault/internal/storage"
)

var (
	captureShell  string
	captureFollow bool
	captureQuiet  bool
)

var captureCmd = &cobra.Command{
	Use:     "capture [line...]",
	Short:   "Clean terminal lines and save them to the library",
	GroupID: groupCapture,
	Long: `Clean terminal lines, classify them and save them to the library.

Lines that are too short, unrecognizable, already saved or carry
credentials (passwords, tokens, keys) are skipped.
Without arguments, standard input is read until EOF.

With --follow, capture keeps running: expired trash is purged periodically,
the write-ahead log is checkpointed and config file edits are picked up
without a restart. Logs go to the log file in the data directory.

Examples:
  cmdvault capture 'user@host:~$ docker compose up -d'
  tail -f ~/terminal.log | cmdvault capture --follow`,
	RunE: runCapture,
}

func init() {
	captureCmd.Flags().StringVar(&captureShell, "shell", "auto", "Prompt dialect: auto, bash, zsh, fish, powershell, cmd")
	captureCmd.Flags().BoolVarP(&captureFollow, "follow", "f", false, "Keep reading input and run maintenance in the background")
	captureCmd.Flags().BoolVarP(&captureQuiet, "quiet", "q", false, "Only print the summary")
	rootCmd.AddCommand(captureCmd)
}

func captureOptions(a *app, cfg *config.Config) (capture.Options, error) {
	opts := capture.Options{
		MinCommandLength: cfg.Capture.MinCommandLength,
		SkipDuplicates:   cfg.Capture.SkipDuplicates,
		SkipSecrets:      cfg.Capture.SkipSecrets,
	}
	if captureShell != "" && captureShell != "auto" {
		d, err := a.dialect(captureShell)
		if err != nil {
			return opts, err
		}
		opts.Dialect = d
	}
	return opts, nil
}

func runCapture(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logFile := ""
	if captureFollow {
		logFile = config.DefaultPaths().LogFile()
	}
	a, err := openApp(ctx, logFile)
	if err != nil {
		return err
	}
	defer a.Close()

	opts, err := captureOptions(a, a.cfg)
	if err != nil {
		return err
	}
	pipeline := capture.New(a.cleaner, a.library, opts, a.logger)
	out := cmd.OutOrStdout()

	report := func(res capture.Result) {
		if captureQuiet {
			return
		}
		switch res.Outcome {
		case capture.OutcomeSaved:
			fmt.Fprintf(out, "%s %s %s\n", styleOK.Render("saved"), styleID.Render(shortID(res.Record.ID)), res.Command)
		case capture.OutcomeDuplicate:
			fmt.Fprintf(out, "%s %s\n", styleDim.Render("duplicate"), res.Command)
		case capture.OutcomeTooShort:
			// blank lines are common in piped input
		default:
			fmt.Fprintf(out, "%s %s\n", styleWarn.Render(string(res.Outcome)), res.Command)
		}
	}

	if len(args) > 0 {
		res, err := pipeline.Capture(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		report(res)
		if res.Outcome == capture.OutcomeTooShort {
			fmt.Fprintf(out, "%s %q\n", styleWarn.Render("too short"), res.Command)
		}
		return nil
	}

	followOpts := capture.FollowOptions{
		MaxLineBytes: a.cfg.Capture.MaxLineBytes,
		OnResult:     report,
	}
	if captureFollow {
		runner := maintenance.NewRunner(a.library, a.db, maintenance.Config{
			Interval: time.Duration(a.cfg.Store.MaintenanceIntervalMins) * time.Minute,
			Logger:   a.logger,
		})
		pipeline.OnSave(func(*storage.CommandRecord) { runner.RecordSave() })

		configFile := a.paths.ConfigFile()
		followOpts.Background = []func(context.Context) error{
			runner.Run,
			func(ctx context.Context) error {
				if err := os.MkdirAll(a.paths.ConfigDir, 0o755); err != nil {
					return err
				}
				return capture.WatchFile(ctx, configFile, 0, a.logger, func() {
					reloadCaptureConfig(ctx, a, pipeline, configFile)
				})
			},
		}
	}

	summary, err := pipeline.Follow(ctx, cmd.InOrStdin(), followOpts)
	if err != nil {
		return err
	}
	snap := a.cleaner.Analytics().Snapshot()
	a.logger.Info("capture finished",
		"lines", summary.Lines,
		"saved", summary.Saved,
		"clean_attempts", snap.Attempts,
		"clean_success_rate", snap.SuccessRate(),
		"recoveries", snap.RecoveryUses,
		"corrections", snap.CorrectionUses,
		"overrides", snap.OverrideUses,
	)
	fmt.Fprintf(out, "%s\n", styleDim.Render(fmt.Sprintf(
		"%d line(s): %d saved, %d duplicate, %d invalid, %d with secrets, %d skipped",
		summary.Lines, summary.Saved, summary.Duplicates, summary.Invalid, summary.Secrets, summary.TooShort+summary.Oversized,
	)))
	return nil
}

// reloadCaptureConfig re-reads the config file and applies the capture
// settings and prompt overrides. A broken file keeps the old settings.
func reloadCaptureConfig(ctx context.Context, a *app, pipeline *capture.Pipeline, path string) {
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		a.logger.Warn("config reload failed", "config_path", path, "error", err)
		return
	}
	opts, err := captureOptions(a, cfg)
	if err != nil {
		a.logger.Warn("config reload failed", "config_path", path, "error", err)
		return
	}
	if err := a.configureCleaner(ctx, cfg); err != nil {
		a.logger.Warn("config reload failed", "config_path", path, "error", err)
		return
	}
	if cfg.Capture.DefaultShell == "auto" {
		a.cleaner.Detector().Invalidate()
	}
	pipeline.SetOptions(opts)
	a.cfg = cfg
	cvlog.LogConfigReload(a.logger, path)
}
