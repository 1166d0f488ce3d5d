package prompt

import "regexp"

// ansiRE matches ANSI escape sequences:
//   - CSI sequences: ESC [ ... final_byte  (covers SGR like \x1b[31m)
//   - OSC sequences: ESC ] ... (ST | BEL), used for window titles and cwd hints
//   - Charset designation: ESC ( B, ESC ) 0
var ansiRE = regexp.MustCompile(`\x1b(?:` +
	`\[[0-9;?]*[A-Za-z]` +
	`|` +
	`\].*?(?:\x1b\\|\x07)` +
	`|` +
	`[()][A-B0-2]` +
	`)`)

// StripANSI removes ANSI escape sequences from captured terminal text.
func StripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}
