package sanitize

// Redactor masks and detects secrets using an ordered pattern list.
type Redactor struct {
	patterns []Pattern
}

// NewRedactor returns a Redactor using the built-in patterns.
func NewRedactor() *Redactor {
	return &Redactor{patterns: SecretPatterns()}
}

// NewRedactorWithPatterns returns a Redactor using only patterns.
func NewRedactorWithPatterns(patterns []Pattern) *Redactor {
	return &Redactor{patterns: patterns}
}

// Redact replaces every secret in s with a placeholder.
func (r *Redactor) Redact(s string) string {
	if s == "" {
		return s
	}
	for _, p := range r.patterns {
		s = p.Regex.ReplaceAllString(s, p.Replacement)
	}
	return s
}

// FindSecret returns the name of the first pattern matching s.
func (r *Redactor) FindSecret(s string) (string, bool) {
	for _, p := range r.patterns {
		if p.Regex.MatchString(s) {
			return p.Name, true
		}
	}
	return "", false
}

var defaultRedactor = NewRedactor()

// Redact masks secrets in s with the built-in patterns.
func Redact(s string) string {
	return defaultRedactor.Redact(s)
}

// ContainsSecret reports whether s matches any built-in secret pattern.
func ContainsSecret(s string) bool {
	_, ok := defaultRedactor.FindSecret(s)
	return ok
}
