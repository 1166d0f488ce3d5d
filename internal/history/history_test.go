package history

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func commands(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Command
	}
	return out
}

func TestParse_Bash(t *testing.T) {
	t.Parallel()

	content := "ls -la\n\n#1700000000\ngit status\ncd /tmp\n"
	entries, err := Parse("bash", strings.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, []string{"ls -la", "git status", "cd /tmp"}, commands(entries))
	assert.True(t, entries[0].Timestamp.IsZero())
	assert.Equal(t, time.Unix(1700000000, 0), entries[1].Timestamp)
	assert.True(t, entries[2].Timestamp.IsZero())
}

func TestParse_BashSkipsCommentLines(t *testing.T) {
	t.Parallel()

	content := "#!/bin/bash\n# rm -rf build\n#\n#1700000000\n#old note\nmake\n"
	entries, err := Parse("bash", strings.NewReader(content))
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, "make", entries[0].Command)
	assert.Equal(t, time.Unix(1700000000, 0), entries[0].Timestamp)
}

func TestParse_ZshExtended(t *testing.T) {
	t.Parallel()

	content := ": 1700000000:0;git status\n" +
		": 1700000005:2;docker build \\\n" +
		"  -t app .\n" +
		"echo plain\n"
	entries, err := Parse("zsh", strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "git status", entries[0].Command)
	assert.Equal(t, time.Unix(1700000000, 0), entries[0].Timestamp)
	assert.Equal(t, "docker build \n  -t app .", entries[1].Command)
	assert.Equal(t, time.Unix(1700000005, 0), entries[1].Timestamp)
	assert.Equal(t, "echo plain", entries[2].Command)
	assert.True(t, entries[2].Timestamp.IsZero())
}

func TestParse_ZshEscapedBackslashIsNotContinuation(t *testing.T) {
	t.Parallel()

	entries, err := Parse("zsh", strings.NewReader("echo a\\\\\necho b\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{`echo a\\`, "echo b"}, commands(entries))
}

func TestParse_ZshUnterminatedContinuation(t *testing.T) {
	t.Parallel()

	entries, err := Parse("zsh", strings.NewReader("make \\\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"make "}, commands(entries))
}

func TestParse_Fish(t *testing.T) {
	t.Parallel()

	content := "- cmd: cargo build\n  when: 1700000000\n  paths:\n    - src\n" +
		"- cmd: echo a\\nb \\\\ c\n  when: 1700000010\n" +
		"- cmd: ls\n"
	entries, err := Parse("fish", strings.NewReader(content))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "cargo build", entries[0].Command)
	assert.Equal(t, time.Unix(1700000000, 0), entries[0].Timestamp)
	assert.Equal(t, "echo a\nb \\ c", entries[1].Command)
	assert.Equal(t, "ls", entries[2].Command)
	assert.True(t, entries[2].Timestamp.IsZero())
}

func TestParse_UnsupportedShell(t *testing.T) {
	t.Parallel()

	_, err := Parse("tcsh", strings.NewReader("ls\n"))
	require.Error(t, err)
}

func TestParse_KeepsMostRecentEntries(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	for i := 0; i < MaxImportEntries+10; i++ {
		b.WriteString("cmd" + strconv.Itoa(i) + "\n")
	}
	entries, err := Parse("bash", strings.NewReader(b.String()))
	require.NoError(t, err)
	require.Len(t, entries, MaxImportEntries)
	assert.Equal(t, "cmd10", entries[0].Command)
	assert.Equal(t, "cmd"+strconv.Itoa(MaxImportEntries+9), entries[len(entries)-1].Command)
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "ls\npwd\n")
	entries, err := ReadFile("bash", path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ls", "pwd"}, commands(entries))

	entries, err = ReadFile("bash", filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("HISTFILE", "")
	t.Setenv("XDG_DATA_HOME", "")

	assert.Equal(t, filepath.Join(home, ".bash_history"), DefaultPath("bash"))
	assert.Equal(t, filepath.Join(home, ".zsh_history"), DefaultPath("zsh"))
	assert.Equal(t, filepath.Join(home, ".local", "share", "fish", "fish_history"), DefaultPath("fish"))
	assert.Empty(t, DefaultPath("tcsh"))

	t.Setenv("HISTFILE", "/custom/hist")
	assert.Equal(t, "/custom/hist", DefaultPath("zsh"))
	assert.NotEqual(t, "/custom/hist", DefaultPath("fish"))
}

func TestHasUnescapedTrailingBackslash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"", false},
		{`a\`, true},
		{`a\\`, false},
		{`a\\\`, true},
		{"abc", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, hasUnescapedTrailingBackslash(tt.in), tt.in)
	}
}
