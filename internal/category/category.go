// Package category assigns a category tag to a cleaned command using an
// ordered list of keyword rules.
package category

import (
	"path/filepath"
	"strings"

	"github.com/google/shlex"
)

// Tag is a short classification label.
type Tag string

// Uncategorized is the bucket callers apply when Classify finds no match.
const Uncategorized Tag = "uncategorized"

const (
	Publishing      Tag = "publishing"
	PackageManagers Tag = "package-managers"
	Git             Tag = "git"
	Containers      Tag = "containers"
	Cloud           Tag = "cloud"
	Node            Tag = "node"
	Python          Tag = "python"
	Go              Tag = "go"
	Rust            Tag = "rust"
	Java            Tag = "java"
	DotNet          Tag = "dotnet"
	Build           Tag = "build"
	Network         Tag = "network"
	System          Tag = "system"
)

// Rule maps a set of keywords to a tag. A keyword may span several tokens
// ("npm publish"); it matches only as consecutive whole tokens.
type Rule struct {
	Tag      Tag
	Keywords []string
}

// DefaultRules returns the built-in rules. Order matters: the first rule
// with a matching keyword wins, so narrower rules come first.
func DefaultRules() []Rule {
	return []Rule{
		{Publishing, []string{
			"npm publish", "yarn publish", "pnpm publish", "cargo publish",
			"twine upload", "gem push", "vsce publish", "docker push",
			"gh release", "goreleaser", "dotnet nuget push", "mvn deploy",
		}},
		{PackageManagers, []string{
			"brew", "apt", "apt-get", "dnf", "yum", "pacman", "zypper",
			"snap", "choco", "winget", "scoop", "apk",
		}},
		{Git, []string{"git", "gh", "glab", "svn", "hg", "lazygit"}},
		{Containers, []string{
			"docker", "docker-compose", "podman", "kubectl", "helm",
			"minikube", "kind create", "kind delete", "kind load", "k9s", "nerdctl", "skaffold",
		}},
		{Cloud, []string{
			"terraform", "tofu", "pulumi", "ansible", "ansible-playbook",
			"aws", "gcloud", "az", "doctl", "flyctl", "vercel", "netlify",
		}},
		{Node, []string{"npm", "npx", "yarn", "pnpm", "node", "deno", "bun", "tsc", "nvm"}},
		{Python, []string{
			"python", "python3", "pip", "pip3", "pipx", "poetry", "pipenv",
			"pytest", "conda", "uv", "ruff", "mypy", "black",
		}},
		{Go, []string{"go", "gofmt", "golangci-lint", "goimports"}},
		{Rust, []string{"cargo", "rustc", "rustup", "rustfmt"}},
		{Java, []string{"java", "javac", "mvn", "gradle", "gradlew", "kotlin", "sbt"}},
		{DotNet, []string{"dotnet", "msbuild", "nuget"}},
		{Build, []string{"make", "cmake", "ninja", "bazel", "just", "meson"}},
		{Network, []string{
			"curl", "wget", "ssh", "scp", "sftp", "rsync", "ping",
			"traceroute", "dig", "nslookup", "nc", "netstat", "telnet",
		}},
		{System, []string{
			"ls", "cd", "pwd", "cat", "less", "head", "tail", "grep", "find",
			"rm", "cp", "mv", "mkdir", "rmdir", "touch", "chmod", "chown",
			"ps", "kill", "top", "htop", "df", "du", "echo", "export",
			"sudo", "tar", "zip", "unzip", "systemctl", "journalctl",
			"dir", "cls", "type", "del", "copy", "move",
			"get-childitem", "set-location", "get-process", "remove-item",
		}},
	}
}

type compiledRule struct {
	tag      Tag
	keywords [][]string
}

// Classifier evaluates rules in order. It is immutable and safe for
// concurrent use.
type Classifier struct {
	rules []compiledRule
}

// NewClassifier prepares rules for matching. Keywords are matched
// case-insensitively.
func NewClassifier(rules []Rule) *Classifier {
	c := &Classifier{rules: make([]compiledRule, 0, len(rules))}
	for _, r := range rules {
		cr := compiledRule{tag: r.Tag}
		for _, kw := range r.Keywords {
			if toks := strings.Fields(strings.ToLower(kw)); len(toks) > 0 {
				cr.keywords = append(cr.keywords, toks)
			}
		}
		c.rules = append(c.rules, cr)
	}
	return c
}

var defaultClassifier = NewClassifier(DefaultRules())

// Default returns the classifier built from DefaultRules.
func Default() *Classifier { return defaultClassifier }

// Classify returns the tag of the first rule matching command.
func Classify(command string) (Tag, bool) {
	return defaultClassifier.Classify(command)
}

// Classify returns the tag of the first rule matching command, or
// ("", false) when none does.
func (c *Classifier) Classify(command string) (Tag, bool) {
	tokens := Tokenize(command)
	if len(tokens) == 0 {
		return "", false
	}
	for _, r := range c.rules {
		for _, kw := range r.keywords {
			if containsSequence(tokens, kw) {
				return r.tag, true
			}
		}
	}
	return "", false
}

// TagOrUncategorized is Classify with the Uncategorized fallback applied.
func (c *Classifier) TagOrUncategorized(command string) Tag {
	if tag, ok := c.Classify(command); ok {
		return tag
	}
	return Uncategorized
}

// Tokenize splits command into lowercased words using shell quoting rules,
// falling back to whitespace splitting when the quoting is unbalanced.
// A leading executable path is reduced to its base name and shell
// operators are dropped. An unquoted # is kept as part of a word rather
// than starting a comment.
func Tokenize(command string) []string {
	raw, err := shlex.Split(escapeHashes(command))
	if err != nil {
		raw = strings.Fields(command)
	}
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		tok = strings.Trim(tok, ";&|()")
		if tok == "" {
			continue
		}
		tok = strings.ToLower(tok)
		if len(tokens) == 0 && strings.ContainsAny(tok, `/\`) {
			tok = filepath.Base(strings.ReplaceAll(tok, `\`, "/"))
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// escapeHashes backslash-escapes every # that shlex would read as the start
// of a comment.
func escapeHashes(s string) string {
	if !strings.Contains(s, "#") {
		return s
	}
	var b strings.Builder
	var inSingle, inDouble, escaped bool
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && !inSingle:
			escaped = true
		case r == '\'' && !inDouble:
			inSingle = !inSingle
		case r == '"' && !inSingle:
			inDouble = !inDouble
		case r == '#' && !inSingle:
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func containsSequence(tokens, seq []string) bool {
	for i := 0; i+len(seq) <= len(tokens); i++ {
		match := true
		for j, s := range seq {
			if tokens[i+j] != s {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
