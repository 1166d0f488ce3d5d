package cmd

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/runger/cmdvault/internal/config"
	"github.com/runger/cmdvault/internal/prompt"
	"github.com/runger/cmdvault/internal/storage"
)

var (
	learnShell string
	learnList  bool
)

var learnCmd = &cobra.Command{
	Use:     "learn <original> [corrected]",
	Short:   "Teach the cleaner a correction",
	GroupID: groupCapture,
	Long: `Teach the cleaner that <original> should read <corrected>.

Whenever <original> appears in a captured line of the same shell it is
replaced before cleaning. Omit <corrected> to delete the text. The newest
100 corrections are kept.

Examples:
  cmdvault learn 'gti ' 'git '
  cmdvault learn --shell powershell '>>> ' ''
  cmdvault learn --list`,
	Args: func(cmd *cobra.Command, args []string) error {
		if learnList {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.RangeArgs(1, 2)(cmd, args)
	},
	RunE: runLearn,
}

var overrideCmd = &cobra.Command{
	Use:     "override <shell> [regex]",
	Short:   "Set or clear a custom prompt pattern for a shell",
	GroupID: groupCapture,
	Long: `Replace the built-in prompt stripping for a shell with your own
regular expression. The first match is removed from each captured line.
Omit the regex to go back to the built-in patterns.

Examples:
  cmdvault override zsh '^\S+ λ '
  cmdvault override zsh`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runOverride,
}

var selftestCmd = &cobra.Command{
	Use:     "selftest",
	Short:   "Check the cleaner against known prompt shapes",
	GroupID: groupSetup,
	Args:    cobra.NoArgs,
	RunE:    runSelftest,
}

var detectCmd = &cobra.Command{
	Use:     "detect",
	Short:   "Show which shell cmdvault thinks you are using",
	GroupID: groupSetup,
	Args:    cobra.NoArgs,
	RunE:    runDetect,
}

func init() {
	learnCmd.Flags().StringVar(&learnShell, "shell", "", "Shell the correction applies to (default: detected)")
	learnCmd.Flags().BoolVar(&learnList, "list", false, "List learned corrections")

	rootCmd.AddCommand(learnCmd, overrideCmd, selftestCmd, detectCmd)
}

func runLearn(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, "")
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if learnList {
		list := a.cleaner.Corrections().All()
		if len(list) == 0 {
			fmt.Fprintln(out, "No corrections learned.")
			return nil
		}
		for _, c := range list {
			fmt.Fprintf(out, "%-10s %q -> %q\n", styleCategory.Render(c.Dialect.String()), c.Original, c.Corrected)
		}
		return nil
	}

	d, err := a.dialect(learnShell)
	if err != nil {
		return err
	}
	corrected := ""
	if len(args) > 1 {
		corrected = args[1]
	}
	corr, err := a.cleaner.LearnCorrection(args[0], corrected, d)
	if err != nil {
		return err
	}
	if err := a.db.InsertCorrection(ctx, &storage.CorrectionRecord{
		Original:        corr.Original,
		Corrected:       corr.Corrected,
		Dialect:         corr.Dialect.String(),
		CreatedAtUnixMs: corr.CreatedAt.UnixMilli(),
	}); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %q -> %q for %s\n", styleOK.Render("Learned"), corr.Original, corr.Corrected, d)
	return nil
}

func runOverride(cmd *cobra.Command, args []string) error {
	paths := config.DefaultPaths()
	cfg, err := config.LoadFromFile(paths.ConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pattern := ""
	if len(args) > 1 {
		pattern = args[1]
	}
	if err := cfg.SetOverride(args[0], pattern); err != nil {
		return err
	}
	if err := saveConfig(cfg, paths); err != nil {
		return err
	}

	d := prompt.ParseDialect(args[0])
	out := cmd.OutOrStdout()
	if pattern == "" {
		fmt.Fprintf(out, "Removed the %s override; built-in patterns apply.\n", d)
	} else {
		fmt.Fprintf(out, "%s override set to %s\n", styleCategory.Render(d.String()), pattern)
	}
	return nil
}

var errSelftestFailed = errors.New("self-test failed")

func runSelftest(cmd *cobra.Command, args []string) error {
	// A bare cleaner: overrides and corrections would skew the results.
	report := prompt.New(nil).SelfTest(prompt.DefaultSelfTestCases())

	out := cmd.OutOrStdout()
	for _, r := range report.Results {
		if r.Passed {
			fmt.Fprintf(out, "%s %s\n", styleOK.Render("PASS"), r.Case.Name)
			continue
		}
		fmt.Fprintf(out, "%s %s\n", styleError.Render("FAIL"), r.Case.Name)
		fmt.Fprintf(out, "     input:    %q\n", r.Case.Input)
		fmt.Fprintf(out, "     expected: %q\n", r.Case.Expected)
		fmt.Fprintf(out, "     got:      %q\n", r.Got)
	}
	fmt.Fprintf(out, "\n%d passed, %d failed\n", report.Passed, report.Failed)
	if !report.OK() {
		return errSelftestFailed
	}
	return nil
}

func runDetect(cmd *cobra.Command, args []string) error {
	paths := config.DefaultPaths()
	cfg, err := config.LoadFromFile(paths.ConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	params := prompt.LaunchParamsFromEnv()
	detector := prompt.NewDetector(
		prompt.WithIntrospector(prompt.NewProcessIntrospector()),
		prompt.WithLaunchParams(params),
	)

	out := cmd.OutOrStdout()
	row := func(k, v string) {
		fmt.Fprintf(out, "%s %s\n", styleBold.Render(fmt.Sprintf("%-15s", k)), v)
	}
	row("detected:", detector.Detect().String())
	row("shell path:", params.ShellPath)
	row("from $SHELL:", prompt.DialectFromLaunchParams(params).String())
	row("configured:", cfg.Capture.DefaultShell)

	if len(cfg.Overrides) > 0 {
		shells := make([]string, 0, len(cfg.Overrides))
		for s := range cfg.Overrides {
			shells = append(shells, s)
		}
		sort.Strings(shells)
		for _, s := range shells {
			row("override "+s+":", cfg.Overrides[s])
		}
	}
	return nil
}
