package cmd

import (
	"os"
	"runtime"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles used for terminal output. applyColorMode rebuilds them.
var (
	styleBold     lipgloss.Style
	styleDim      lipgloss.Style
	styleID       lipgloss.Style
	styleCategory lipgloss.Style
	styleFavorite lipgloss.Style
	styleOK       lipgloss.Style
	styleWarn     lipgloss.Style
	styleError    lipgloss.Style
)

func init() {
	applyColorMode()
}

// applyColorMode picks the color profile from --color and the environment.
func applyColorMode() {
	switch colorMode {
	case "always":
		enableColors()
	case "never":
		disableColors()
	default:
		if shouldDisableColors() {
			disableColors()
		} else {
			lipgloss.SetColorProfile(termenv.NewOutput(os.Stdout).ColorProfile())
			buildStyles()
		}
	}
}

func enableColors() {
	lipgloss.SetColorProfile(termenv.ANSI256)
	buildStyles()
}

func disableColors() {
	lipgloss.SetColorProfile(termenv.Ascii)
	buildStyles()
}

func buildStyles() {
	styleBold = lipgloss.NewStyle().Bold(true)
	styleDim = lipgloss.NewStyle().Faint(true)
	styleID = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	styleCategory = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	styleFavorite = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleOK = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleWarn = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	styleError = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
}

func shouldDisableColors() bool {
	// Check NO_COLOR environment variable (https://no-color.org/)
	if os.Getenv("NO_COLOR") != "" {
		return true
	}

	if os.Getenv("TERM") == "dumb" {
		return true
	}

	// On Windows, check if ANSI is supported
	if runtime.GOOS == "windows" {
		if os.Getenv("WT_SESSION") != "" {
			return false // Windows Terminal supports ANSI
		}
		if os.Getenv("TERM_PROGRAM") != "" {
			return false // Modern terminal emulator
		}
		// Disable by default on older Windows consoles
		return os.Getenv("ANSICON") == "" && os.Getenv("ConEmuANSI") != "ON"
	}

	return false
}

// terminalWidth returns the output width: $COLUMNS, then the terminal
// size, then 80.
func terminalWidth() int {
	if v, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && v > 0 {
		return v
	}
	if w := getTermWidthIoctl(os.Stdout); w > 0 {
		return w
	}
	return 80
}
