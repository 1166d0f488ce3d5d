// Package prompt strips shell-prompt decoration from captured terminal lines.
//
// A Cleaner owns every piece of mutable state the cleaning pipeline needs:
// the learned-correction ring buffer, per-dialect override patterns and the
// analytics counters. Nothing in this package is global, so independent
// cleaners can be used side by side (one per terminal session, one per test).
package prompt

import (
	"path/filepath"
	"strings"
)

// Dialect identifies a shell's prompt syntax family.
type Dialect string

const (
	DialectUnknown    Dialect = "unknown"
	DialectPowerShell Dialect = "powershell"
	DialectCmd        Dialect = "cmd"
	DialectZsh        Dialect = "zsh"
	DialectBash       Dialect = "bash"
	DialectFish       Dialect = "fish"
)

// Dialects lists the known dialects in the order recovery tries their patterns.
func Dialects() []Dialect {
	return []Dialect{DialectPowerShell, DialectCmd, DialectZsh, DialectBash, DialectFish}
}

// IsKnown reports whether d is one of the supported dialects.
func (d Dialect) IsKnown() bool {
	switch d {
	case DialectPowerShell, DialectCmd, DialectZsh, DialectBash, DialectFish:
		return true
	}
	return false
}

func (d Dialect) String() string {
	if d == "" {
		return string(DialectUnknown)
	}
	return string(d)
}

// ParseDialect maps a shell name, executable name or path to a Dialect.
// Anything it does not recognize is DialectUnknown.
func ParseDialect(name string) Dialect {
	name = strings.ToLower(strings.TrimSpace(name))
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	// login shells show up as "-zsh"
	name = strings.TrimPrefix(name, "-")
	switch name {
	case "powershell", "pwsh", "ps", "powershell.exe", "pwsh.exe":
		return DialectPowerShell
	case "cmd", "cmd.exe", "command prompt":
		return DialectCmd
	case "zsh":
		return DialectZsh
	case "bash", "sh", "gitbash", "git-bash", "wsl":
		return DialectBash
	case "fish":
		return DialectFish
	}
	return DialectUnknown
}
