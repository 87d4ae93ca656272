package logger

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxPathLength is the maximum length for URL paths in logs
	MaxPathLength = 500
	// MaxSubjectLength is the maximum length for subject ids in logs
	MaxSubjectLength = 128
)

// SanitizePath sanitizes a URL path for safe logging: validates UTF-8,
// strips control characters and truncates.
func SanitizePath(path string) string {
	if path == "" {
		return ""
	}

	if !utf8.ValidString(path) {
		path = strings.ToValidUTF8(path, "")
	}

	var builder strings.Builder
	builder.Grow(len(path))
	for _, r := range path {
		if unicode.IsPrint(r) || r == ' ' || r == '\t' {
			builder.WriteRune(r)
		}
	}
	path = builder.String()

	if len(path) > MaxPathLength {
		path = path[:MaxPathLength] + "..."
	}

	return path
}

// SanitizeSubject truncates and cleans a token subject id for logging.
func SanitizeSubject(sub string) string {
	if !utf8.ValidString(sub) {
		sub = strings.ToValidUTF8(sub, "")
	}
	if len(sub) > MaxSubjectLength {
		sub = sub[:MaxSubjectLength] + "..."
	}
	return sub
}

// RedactToken returns a loggable fingerprint of a bearer token. Tokens must
// never appear in logs in full; the first few characters are enough to
// correlate with the caller.
func RedactToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 8 {
		return "[redacted]"
	}
	return token[:8] + "...[redacted]"
}
