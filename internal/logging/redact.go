// Package logging holds the log plumbing shared by the CLI, the gateway
// and the server: secret redaction for anything written to disk and
// helpers for logging model prompts and replies safely.
package logging

import (
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// RedactedValue replaces matched secrets.
const RedactedValue = "[REDACTED]"

// secretPatterns match credential formats that capability commands and
// .env files commonly carry.
var secretPatterns = []*regexp.Regexp{ //nolint:gochecknoglobals // compiled once
	// Google AI Studio / Gemini keys
	regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`),
	// Anthropic keys
	regexp.MustCompile(`sk-ant-[a-zA-Z0-9_-]+`),
	// OpenAI style keys
	regexp.MustCompile(`sk-[a-zA-Z0-9_-]{20,}`),
	// GitHub tokens
	regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]{20,}`),
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._-]{20,}`),
	regexp.MustCompile(`(?i)(api[_-]?key|token|secret|password)\s*[:=]\s*["']?[^\s"',}]{8,}["']?`),
}

// secretFieldNames are env or field names whose values are always hidden.
var secretFieldNames = []string{ //nolint:gochecknoglobals // lookup table
	"api_key", "apikey", "api-key",
	"token", "secret", "password", "credential",
	"authorization", "private_key",
}

// ContainsSecret reports whether s matches any secret pattern.
func ContainsSecret(s string) bool {
	for _, p := range secretPatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// Redact replaces every secret in s with RedactedValue.
func Redact(s string) string {
	for _, p := range secretPatterns {
		s = p.ReplaceAllString(s, RedactedValue)
	}
	return s
}

// IsSecretName reports whether a field or env var name denotes a secret.
func IsSecretName(name string) bool {
	lower := strings.ToLower(name)
	for _, n := range secretFieldNames {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}

// SafeValue hides value entirely when name is a secret name and redacts
// embedded secrets otherwise.
func SafeValue(name, value string) string {
	if IsSecretName(name) {
		return RedactedValue
	}
	return Redact(value)
}

// Preview returns a redacted, single-line excerpt of at most limit runes
// for logging prompts and model replies.
func Preview(s string, limit int) string {
	s = strings.Join(strings.Fields(Redact(s)), " ")
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "…"
}

// Hook flags log events whose message carries a secret. zerolog hooks
// cannot rewrite the message, so call sites still pass values through
// Redact or SafeValue.
type Hook struct{}

// Run implements zerolog.Hook.
func (Hook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	if ContainsSecret(msg) {
		e.Bool("contains_filtered_data", true)
	}
}

// RedactingWriter redacts secrets from everything written through it.
type RedactingWriter struct {
	w io.Writer
}

// NewRedactingWriter wraps w.
func NewRedactingWriter(w io.Writer) *RedactingWriter {
	return &RedactingWriter{w: w}
}

// Write implements io.Writer. It reports len(p) on success so callers do
// not treat redaction as a short write.
func (rw *RedactingWriter) Write(p []byte) (int, error) {
	if _, err := rw.w.Write([]byte(Redact(string(p)))); err != nil {
		return 0, err
	}
	return len(p), nil
}
