package sanitize

// Redactor applies a set of secret patterns to outgoing text
type Redactor struct {
	patterns []Pattern
}

// NewRedactor creates a Redactor with the default patterns
func NewRedactor() *Redactor {
	return &Redactor{
		patterns: GetSecretPatterns(),
	}
}

// NewRedactorWithPatterns creates a Redactor with custom patterns
func NewRedactorWithPatterns(patterns []Pattern) *Redactor {
	return &Redactor{
		patterns: patterns,
	}
}

// Redact replaces detected secrets in the input with placeholders
func (r *Redactor) Redact(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, p := range r.patterns {
		result = p.Regex.ReplaceAllString(result, p.Replacement)
	}
	return result
}

// DefaultRedactor is a package-level redactor for convenience
var DefaultRedactor = NewRedactor()

// Redact uses the default redactor
func Redact(input string) string {
	return DefaultRedactor.Redact(input)
}
