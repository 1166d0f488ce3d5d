// Package cmdutil provides shared command utility functions.
package cmdutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// TrimCommand returns the command text used for storage and duplicate checks.
func TrimCommand(cmd string) string {
	return strings.TrimSpace(cmd)
}

// CollapseWhitespace replaces every run of whitespace with a single space
// and trims the ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// HashCommand generates a SHA256 hash of the trimmed command text.
// Two commands are duplicates exactly when their hashes match.
func HashCommand(cmd string) string {
	hash := sha256.Sum256([]byte(TrimCommand(cmd)))
	return hex.EncodeToString(hash[:])
}

// Truncate shortens s to maxLen bytes with a "..." suffix, for log lines.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
