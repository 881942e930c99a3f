// Package redact removes credentials from strings before they are logged.
// Errors from the database driver, the image provider and the object store
// can echo connection strings or API keys back to the caller.
package redact

import (
	"log/slog"
	"regexp"
)

// Redaction placeholders.
const (
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	KeyPlaceholder        = "[REDACTED_KEY]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// Rules are applied in order; connection strings go first so the password
// rule does not split them.
var rules = []rule{
	{
		pattern:     regexp.MustCompile(`(?i)(postgres|postgresql|pgx|s3|minio|https?)://[^@/\s]+@`),
		placeholder: CredentialPlaceholder,
	},
	{
		pattern:     regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`),
		placeholder: CredentialPlaceholder,
	},
	{
		// Google API keys, as used for the generation provider.
		pattern:     regexp.MustCompile(`AIza[0-9A-Za-z_\-]{35}`),
		placeholder: KeyPlaceholder,
	},
	{
		pattern: regexp.MustCompile(
			`(?i)(api[_-]?key|secret[_-]?key|access[_-]?key|token|secret|key)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`,
		),
		placeholder: KeyPlaceholder,
	},
	{
		// S3 style access key ids.
		pattern:     regexp.MustCompile(`\bAKIA[A-Z0-9]{12,}\b`),
		placeholder: KeyPlaceholder,
	},
}

// String redacts credentials from s.
func String(s string) string {
	if s == "" {
		return s
	}
	for _, r := range rules {
		s = r.pattern.ReplaceAllString(s, r.placeholder)
	}
	return s
}

// Error redacts credentials from err's message.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// ReplaceAttr is a slog.HandlerOptions.ReplaceAttr hook that redacts string
// and error values. Attribute keys are left alone.
func ReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		if s := a.Value.String(); s != "" {
			a.Value = slog.StringValue(String(s))
		}
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok {
			a.Value = slog.StringValue(Error(err))
		}
	}
	return a
}
