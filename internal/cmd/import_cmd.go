package cmd

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runger/cmdvault/internal/history"
)

var (
	importPath  string
	importForce bool
)

var importCmd = &cobra.Command{
	Use:     "import [bash|zsh|fish|auto]",
	Short:   "Import commands from a shell history file",
	GroupID: groupCapture,
	Long: `Import commands from a shell history file into the library.

At most the most recent 25000 entries are read. Commands already in the
library or carrying credentials are skipped. Each shell is imported once
unless --force is given.

Examples:
  cmdvault import              # Detect the shell
  cmdvault import zsh
  cmdvault import bash --path ~/backup/.bash_history`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: append(history.Shells(), "auto"),
	RunE:      runImport,
}

func init() {
	importCmd.Flags().StringVar(&importPath, "path", "", "History file (default: the shell's usual location)")
	importCmd.Flags().BoolVar(&importForce, "force", false, "Import again even if this shell was imported before")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, "")
	if err != nil {
		return err
	}
	defer a.Close()

	shell := "auto"
	if len(args) > 0 {
		shell = strings.ToLower(args[0])
	}
	if shell == "auto" {
		shell = a.cleaner.Detector().Detect().String()
	}
	if !slices.Contains(history.Shells(), shell) {
		return fmt.Errorf("cannot import %s history; choose one of: %s", shell, strings.Join(history.Shells(), ", "))
	}

	im := &history.Importer{
		Library:     a.library,
		Book:        a.db,
		Logger:      a.logger,
		SkipSecrets: a.cfg.Capture.SkipSecrets,
	}
	report, err := im.Import(ctx, history.ImportOptions{
		Shell: shell,
		Path:  importPath,
		Force: importForce,
	})
	if errors.Is(err, history.ErrAlreadyImported) {
		return fmt.Errorf("%w (use --force to import again)", err)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %d command(s) from %s history\n", styleOK.Render("Imported"), report.Imported, shell)
	if report.Duplicates > 0 {
		fmt.Fprintln(out, styleDim.Render(fmt.Sprintf("Skipped %d duplicate(s)", report.Duplicates)))
	}
	if report.Secrets > 0 {
		fmt.Fprintln(out, styleDim.Render(fmt.Sprintf("Skipped %d command(s) containing credentials", report.Secrets)))
	}
	return nil
}
