package prompt

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxCommandLength is the exclusive upper bound, in characters, for a
// cleaned command to be considered valid.
const MaxCommandLength = 1000

// promptPunctuation are the single characters shells end their prompts with.
const promptPunctuation = "#$%>"

// promptGlyphs are multi-byte prompt terminators used by popular themes.
const promptGlyphs = "❯➜λ»›→"

// Built-in stripping patterns, one per dialect.
var (
	powerShellPattern = regexp.MustCompile(`^(?:\([^)]*\)\s*)?PS(?:\s+[^>]*)?>\s*`)
	cmdPattern        = regexp.MustCompile(`^(?:\([^)]*\)\s*)?[A-Za-z]:\\[^>]*>\s*`)
	zshPattern        = regexp.MustCompile(`^([^%#$]*?)[%#$]\s+`)
	bashPattern       = regexp.MustCompile(`^([^$#]*)[$#]\s+`)
	fishPattern       = regexp.MustCompile(`^([^>]*)>\s+`)

	// genericPattern strips through the last prompt character that is
	// followed by whitespace.
	genericPattern = regexp.MustCompile(`^.*[#$%>]\s+`)

	// boxedPattern matches two-line "box drawing" prompts (kali, powerlevel10k,
	// starship) whether or not the top line was captured:
	//
	//	┌──(user㉿host)-[~/src]└─$ ls
	//	╰─➜ git status
	boxedPattern = regexp.MustCompile(`^(?:[┌╭┏][^└╰┗]*)?[└╰┗]─*[^\s$#%❯➜>]*\s*[$#%❯➜>]\s*`)
)

// isBoxedPrompt reports whether s starts with one of the box-drawing corner
// glyphs that open a composite prompt.
func isBoxedPrompt(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	switch r {
	case '┌', '╭', '┏', '└', '╰', '┗':
		return true
	}
	return false
}

// stripFirst removes the first match of re from s.
// The second result reports whether anything matched.
func stripFirst(re *regexp.Regexp, s string) (string, bool) {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s, false
	}
	return s[:loc[0]] + s[loc[1]:], true
}

// stripPrompt removes the match of re from the start of s when the text
// captured before the prompt character looks like a prompt (see
// isPromptPrefix). Bare commands such as "echo hi > out.txt" are left alone.
func stripPrompt(re *regexp.Regexp, s string) (string, bool) {
	m := re.FindStringSubmatchIndex(s)
	if m == nil || !isPromptPrefix(s[m[2]:m[3]]) {
		return s, false
	}
	return s[m[1]:], true
}

// promptMarkers appear in the first word of typical prompts: user@host,
// ~/path, host:path, [user@host ~], (venv).
const promptMarkers = `@~/:\[]()`

// isPromptPrefix accepts an empty or single-word prefix, or one whose first
// word carries a prompt marker.
func isPromptPrefix(prefix string) bool {
	fields := strings.Fields(prefix)
	if len(fields) <= 1 {
		return true
	}
	return strings.ContainsAny(fields[0], promptMarkers)
}

// stripDialect applies the built-in pattern for d.
func stripDialect(s string, d Dialect) (string, bool) {
	switch d {
	case DialectPowerShell:
		return stripFirst(powerShellPattern, s)
	case DialectCmd:
		return stripFirst(cmdPattern, s)
	case DialectZsh:
		if isBoxedPrompt(s) {
			if out, ok := stripFirst(boxedPattern, s); ok {
				return out, true
			}
		}
		return stripPrompt(zshPattern, s)
	case DialectBash:
		if isBoxedPrompt(s) {
			if out, ok := stripFirst(boxedPattern, s); ok {
				return out, true
			}
		}
		return stripPrompt(bashPattern, s)
	case DialectFish:
		return stripPrompt(fishPattern, s)
	default:
		return stripFirst(genericPattern, s)
	}
}

func isPromptPunctuation(r rune) bool {
	return strings.ContainsRune(promptPunctuation, r) || strings.ContainsRune(promptGlyphs, r)
}

// isValidCommand reports whether s looks like a bare command: non-empty,
// shorter than MaxCommandLength, and neither starting nor ending with prompt
// punctuation. A leading pictograph (emoji, dingbat) counts as leftover
// prompt decoration.
func isValidCommand(s string) bool {
	if s == "" || utf8.RuneCountInString(s) >= MaxCommandLength {
		return false
	}
	first, _ := utf8.DecodeRuneInString(s)
	last, _ := utf8.DecodeLastRuneInString(s)
	if isPromptPunctuation(first) || isPromptPunctuation(last) {
		return false
	}
	if unicode.Is(unicode.So, first) {
		return false
	}
	return true
}
