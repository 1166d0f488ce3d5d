package cmd

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func withColorMode(t *testing.T, mode string) {
	t.Helper()
	orig := colorMode
	colorMode = mode
	applyColorMode()
	t.Cleanup(func() {
		colorMode = orig
		applyColorMode()
	})
}

func TestApplyColorMode_Always(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	withColorMode(t, "always")

	assert.Equal(t, termenv.ANSI256, lipgloss.ColorProfile())
	assert.NotEqual(t, "ok", styleOK.Render("ok"), "always should color even with NO_COLOR")
}

func TestApplyColorMode_Never(t *testing.T) {
	withColorMode(t, "never")

	assert.Equal(t, termenv.Ascii, lipgloss.ColorProfile())
	assert.Equal(t, "ok", styleOK.Render("ok"))
	assert.Equal(t, "bold", styleBold.Render("bold"))
}

func TestApplyColorMode_AutoHonorsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	withColorMode(t, "auto")

	assert.Equal(t, "ok", styleOK.Render("ok"))
}

func TestShouldDisableColors(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("TERM", "dumb")
	assert.True(t, shouldDisableColors())

	t.Setenv("TERM", "xterm-256color")
	t.Setenv("NO_COLOR", "1")
	assert.True(t, shouldDisableColors())
}

func TestTerminalWidth(t *testing.T) {
	t.Setenv("COLUMNS", "123")
	assert.Equal(t, 123, terminalWidth())

	t.Setenv("COLUMNS", "junk")
	assert.Positive(t, terminalWidth())
}
