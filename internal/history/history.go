// Package history reads bash, zsh and fish history files so their commands
// can be imported into the library.
package history

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// MaxImportEntries is the maximum number of entries to import from a history file.
const MaxImportEntries = 25000

// Entry is a single history entry with an optional timestamp.
type Entry struct {
	Timestamp time.Time // zero if the file has no timestamp for it
	Command   string
}

// Shells lists the shells whose history files can be read.
func Shells() []string {
	return []string{"bash", "zsh", "fish"}
}

// Parse reads history in the format of shell from r. It returns the most
// recent MaxImportEntries entries, oldest first.
func Parse(shell string, r io.Reader) ([]Entry, error) {
	var (
		entries []Entry
		err     error
	)
	switch shell {
	case "bash":
		entries, err = parseBash(r)
	case "zsh":
		entries, err = parseZsh(r)
	case "fish":
		entries, err = parseFish(r)
	default:
		return nil, fmt.Errorf("unsupported shell %q", shell)
	}
	if err != nil {
		return nil, err
	}
	return trimToLimit(entries, MaxImportEntries), nil
}

// ReadFile parses the history file at path, or at DefaultPath(shell) when
// path is empty. A missing file yields no entries.
func ReadFile(shell, path string) ([]Entry, error) {
	if path == "" {
		path = DefaultPath(shell)
	}
	if path == "" {
		return nil, nil
	}

	file, err := os.Open(path) //nolint:gosec // G304: path is from user's HISTFILE, a flag, or a well-known default
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	return Parse(shell, file)
}

// DefaultPath returns the conventional history file location for shell.
// $HISTFILE wins for bash and zsh.
func DefaultPath(shell string) string {
	if shell == "bash" || shell == "zsh" {
		if histFile := os.Getenv("HISTFILE"); histFile != "" {
			return histFile
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	switch shell {
	case "bash":
		return filepath.Join(home, ".bash_history")
	case "zsh":
		return filepath.Join(home, ".zsh_history")
	case "fish":
		// Fish uses XDG_DATA_HOME/fish/fish_history
		if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
			return filepath.Join(dataHome, "fish", "fish_history")
		}
		return filepath.Join(home, ".local", "share", "fish", "fish_history")
	}
	return ""
}

// trimToLimit returns the last n entries from a slice.
// If len(entries) <= n, returns the original slice.
func trimToLimit(entries []Entry, n int) []Entry {
	if len(entries) <= n {
		return entries
	}
	return entries[len(entries)-n:]
}
