// Package sanitize provides best-effort redaction of credentials pasted
// into drafts before any text leaves the machine for a provider call.
package sanitize

import "regexp"

// Pattern represents a compiled regex pattern for secret detection
type Pattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
}

// secretPatterns contains compiled regex patterns for detecting sensitive data
// These patterns are applied before any provider call
var secretPatterns = []Pattern{
	{
		Name:        "AWS Access Key",
		Regex:       regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
		Replacement: "[AWS_ACCESS_KEY_REDACTED]",
	},
	{
		Name:        "Google API Key",
		Regex:       regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`),
		Replacement: "[GOOGLE_API_KEY_REDACTED]",
	},
	{
		Name:        "JWT Token",
		Regex:       regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`),
		Replacement: "[JWT_REDACTED]",
	},
	{
		Name:        "Slack Token",
		Regex:       regexp.MustCompile(`xox[baprs]-[0-9a-zA-Z-]+`),
		Replacement: "[SLACK_TOKEN_REDACTED]",
	},
	{
		Name:        "GitHub Token",
		Regex:       regexp.MustCompile(`gh[po]_[A-Za-z0-9]{36}`),
		Replacement: "[GITHUB_TOKEN_REDACTED]",
	},
	{
		Name:        "OpenAI-style Key",
		Regex:       regexp.MustCompile(`sk-[A-Za-z0-9_-]{20,}`),
		Replacement: "[API_KEY_REDACTED]",
	},
	{
		Name:        "PEM Block",
		Regex:       regexp.MustCompile(`-----BEGIN [A-Z ]+-----[\s\S]+?-----END [A-Z ]+-----`),
		Replacement: "[PEM_BLOCK_REDACTED]",
	},
	{
		Name:        "Bearer Token",
		Regex:       regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9_.-]{20,}`),
		Replacement: "Bearer [TOKEN_REDACTED]",
	},
	{
		Name:        "Generic Secret Assignment",
		Regex:       regexp.MustCompile(`(?i)(password|passwd|token|secret|api[_-]?key)\s*[=:]\s*\S+`),
		Replacement: "$1=[REDACTED]",
	},
}

// GetSecretPatterns returns a copy of the secret detection patterns list.
// A copy is returned to prevent callers from mutating the internal patterns.
func GetSecretPatterns() []Pattern {
	result := make([]Pattern, len(secretPatterns))
	copy(result, secretPatterns)
	return result
}
