// Package sanitize recognizes credentials and destructive operations in
// command lines, so secrets stay out of the library and logs and risky
// commands are flagged before reuse.
package sanitize

import "regexp"

// Pattern is one kind of secret and how to mask it.
type Pattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
}

var secretPatterns = []Pattern{
	{"aws access key", regexp.MustCompile(`AKIA[0-9A-Z]{16}`), "[AWS_ACCESS_KEY_REDACTED]"},
	{"aws secret key", regexp.MustCompile(`(?i)(aws_secret_access_key|secret_access_key)\s*[=:]\s*\S+`), "$1=[AWS_SECRET_REDACTED]"},
	{"jwt", regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`), "[JWT_REDACTED]"},
	{"slack token", regexp.MustCompile(`xox[baprs]-[0-9a-zA-Z-]+`), "[SLACK_TOKEN_REDACTED]"},
	{"github token", regexp.MustCompile(`gh[pousr]_[A-Za-z0-9]{36}`), "[GITHUB_TOKEN_REDACTED]"},
	{"pem block", regexp.MustCompile(`-----BEGIN [A-Z ]+-----[\s\S]+?-----END [A-Z ]+-----`), "[PEM_BLOCK_REDACTED]"},
	{"private key", regexp.MustCompile(`(?i)(private[_-]?key)\s*[=:]\s*\S+`), "$1=[PRIVATE_KEY_REDACTED]"},
	{"assignment", regexp.MustCompile(`(?i)(password|passwd|token|secret|api_key|apikey)\s*[=:]\s*\S+`), "$1=[REDACTED]"},
	{"password flag", regexp.MustCompile(`(?i)(--password|--token|--api-key)(\s+|=)\S+`), "$1$2[REDACTED]"},
	{"url credentials", regexp.MustCompile(`(://[^/\s:@]+):[^/\s@]+@`), "$1:[REDACTED]@"},
	{"bearer", regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._-]{20,}`), "Bearer [TOKEN_REDACTED]"},
	{"basic auth", regexp.MustCompile(`(?i)basic\s+[A-Za-z0-9+/=]{20,}`), "Basic [CREDENTIALS_REDACTED]"},
}

// SecretPatterns returns a copy of the built-in secret patterns.
func SecretPatterns() []Pattern {
	out := make([]Pattern, len(secretPatterns))
	copy(out, secretPatterns)
	return out
}
