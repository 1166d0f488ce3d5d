package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runger/cmdvault/internal/prompt"
)

var (
	cleanShell    string
	cleanDetailed bool
)

var cleanCmd = &cobra.Command{
	Use:     "clean [line...]",
	Short:   "Strip the shell prompt from a terminal line",
	GroupID: groupCapture,
	Long: `Strip prompt decoration from a copied terminal line and print the bare command.

Without arguments, each line of standard input is cleaned.

Examples:
  cmdvault clean 'user@host:~$ ls -la'
  cmdvault clean --shell powershell 'PS C:\Users\me> dir'
  pbpaste | cmdvault clean`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().StringVar(&cleanShell, "shell", "auto", "Prompt dialect: auto, bash, zsh, fish, powershell, cmd")
	cleanCmd.Flags().BoolVar(&cleanDetailed, "detailed", false, "Show dialect and recovery details")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), "")
	if err != nil {
		return err
	}
	defer a.Close()

	d, err := a.dialect(cleanShell)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	emit := func(raw string) {
		res := a.cleaner.CleanDetailed(prompt.StripANSI(raw), d)
		if !cleanDetailed {
			fmt.Fprintln(out, res.Command)
			return
		}
		status := styleOK.Render("ok")
		if !res.Valid {
			status = styleWarn.Render("unvalidated")
		}
		extra := ""
		if res.Recovery != "" {
			extra += " recovery=" + res.Recovery
		}
		if res.UsedCorrection {
			extra += " correction"
		}
		if res.UsedOverride {
			extra += " override"
		}
		fmt.Fprintf(out, "%s\t%s %s%s\n", res.Command, status, styleDim.Render("dialect="+res.Dialect.String()), styleDim.Render(extra))
	}

	if len(args) > 0 {
		emit(strings.Join(args, " "))
		return nil
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), a.cfg.Capture.MaxLineBytes)
	for scanner.Scan() {
		emit(scanner.Text())
	}
	return scanner.Err()
}
