package prompt

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/runger/cmdvault/internal/cmdutil"
)

// recoveryStrategy proposes a candidate command for text that the dialect
// pattern could not clean. ok is false when the strategy does not apply.
type recoveryStrategy struct {
	Name    string
	Recover func(text string) (candidate string, ok bool)
}

// recoveryStrategies are tried in order; the first candidate that validates wins.
var recoveryStrategies = []recoveryStrategy{
	{Name: "all-dialects", Recover: recoverAnyDialect},
	{Name: "command-starter", Recover: recoverFromStarter},
	{Name: "prompt-shape", Recover: recoverPromptShape},
	{Name: "first-alphanumeric", Recover: recoverFirstAlnum},
}

// commandStarters are executables that commonly begin a typed command.
var commandStarters = []string{
	"git", "gh", "npm", "npx", "yarn", "pnpm", "node", "deno", "bun",
	"python", "python3", "pip", "pip3", "poetry", "pytest",
	"go", "cargo", "rustc", "java", "mvn", "gradle", "dotnet",
	"docker", "docker-compose", "podman", "kubectl", "helm", "terraform",
	"make", "cmake", "ls", "cd", "cat", "echo", "grep", "find", "mkdir", "rm",
	"cp", "mv", "touch", "chmod", "curl", "wget", "ssh", "scp", "rsync",
	"sudo", "brew", "apt", "apt-get", "dnf", "yum", "code", "vim", "nvim",
	"dir", "cls", "Get-ChildItem", "Set-Location",
}

// promptShapes are prompt layouts seen often enough to try even when the
// detected dialect says otherwise.
var promptShapes = []*regexp.Regexp{
	regexp.MustCompile(`^[\w.-]+@[\w.-]+(?::[^$#%\s]*)?\s*[$#%]\s*`), // user@host:path$
	regexp.MustCompile(`^PS\s+[^>]*>\s*`),                           // PS path>
	regexp.MustCompile(`^[A-Za-z]:\\[^>]*>\s*`),                      // C:\path>
	regexp.MustCompile(`^.*?[└╰┗]─*[^\s$#%❯➜>]*\s*[$#%❯➜>]\s*`),     // boxed prompt glyph
	regexp.MustCompile(`^[^>]*>\s*`),                                 // lone trailing >
}

func recoverAnyDialect(text string) (string, bool) {
	for _, d := range Dialects() {
		out, ok := stripDialect(text, d)
		if !ok {
			continue
		}
		out = cmdutil.CollapseWhitespace(out)
		if isValidCommand(out) {
			return out, true
		}
	}
	return "", false
}

// recoverFromStarter cuts text at the last command starter. A starter at the
// very beginning proposes nothing new and is ignored.
func recoverFromStarter(text string) (string, bool) {
	best := -1
	for _, tok := range commandStarters {
		if idx := lastTokenIndex(text, tok); idx > best {
			best = idx
		}
	}
	if best <= 0 {
		return "", false
	}
	return text[best:], true
}

func recoverPromptShape(text string) (string, bool) {
	for _, re := range promptShapes {
		out, ok := stripFirst(re, text)
		if ok && out != text {
			return out, true
		}
	}
	return "", false
}

func recoverFirstAlnum(text string) (string, bool) {
	idx := strings.IndexFunc(text, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	})
	if idx <= 0 {
		return "", false
	}
	return text[idx:], true
}

// lastTokenIndex returns the byte offset of the last occurrence of tok in s
// that stands as a whole word outside single or double quotes, or -1. When a
// quote is never closed (an apostrophe in a prompt) quoting is ignored.
func lastTokenIndex(s, tok string) int {
	if idx, balanced := scanToken(s, tok, true); balanced {
		return idx
	}
	idx, _ := scanToken(s, tok, false)
	return idx
}

func scanToken(s, tok string, quoting bool) (last int, balanced bool) {
	last = -1
	var quote rune
	for i, r := range s {
		if quoting {
			if quote != 0 {
				if r == quote {
					quote = 0
				}
				continue
			}
			if r == '\'' || r == '"' {
				quote = r
				continue
			}
		}
		if strings.HasPrefix(s[i:], tok) && tokenBoundaryBefore(s, i) && tokenBoundaryAfter(s, i+len(tok)) {
			last = i
		}
	}
	return last, quote == 0
}

func tokenBoundaryBefore(s string, idx int) bool {
	if idx == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:idx])
	return unicode.IsSpace(r) || isPromptPunctuation(r) || unicode.Is(unicode.So, r)
}

func tokenBoundaryAfter(s string, idx int) bool {
	if idx >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[idx:])
	return unicode.IsSpace(r)
}
