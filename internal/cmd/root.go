package cmd

import (
	"github.com/spf13/cobra"
)

const (
	groupLibrary = "library"
	groupCapture = "capture"
	groupSetup   = "setup"
)

var (
	colorMode string
	dbPath    string
)

var rootCmd = &cobra.Command{
	Use:   "cmdvault",
	Short: "a library of the shell commands you actually use",
	Long: `cmdvault - a library of the shell commands you actually use
  - paste or pipe terminal lines; prompts are stripped for you
  - commands are categorized, deduplicated and kept under a size limit
  - evicted commands wait in the trash before they are gone`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		applyColorMode()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: groupLibrary, Title: "Library:"},
		&cobra.Group{ID: groupCapture, Title: "Capture:"},
		&cobra.Group{ID: groupSetup, Title: "Setup:"},
	)
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "Color output: auto, always, never")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database file (default from CMDVAULT_DB or the data directory)")
}
