package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

// Redactor masks credentials in log attributes.
//
// Attributes whose key names a credential are masked whole, keeping a short
// prefix for identification. Other string values are scanned for inline
// secrets such as bearer tokens.
type Redactor struct {
	patterns []redactPattern
}

// redactPattern contains a compiled regex and replacement string.
type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Pattern names.
const (
	PatternBearerToken = "bearer_token"
	PatternBasicAuth   = "basic_auth"
	PatternAPIKey      = "api_key"
	PatternPassword    = "password"
	PatternURLUserinfo = "url_userinfo"
)

var defaultPatterns = []redactPattern{
	{PatternBearerToken, regexp.MustCompile(`Bearer\s+[a-zA-Z0-9\-._~+/]+=*`), "Bearer ***"},
	{PatternBasicAuth, regexp.MustCompile(`Basic\s+[a-zA-Z0-9+/]+=*`), "Basic ***"},
	{PatternAPIKey, regexp.MustCompile(`(api[-_]?key|access[-_]?token)=[^&\s]+`), "$1=***"},
	{PatternPassword, regexp.MustCompile(`(password|passwd|pwd)[:=]\s*[^\s&]+`), "$1=***"},
	{PatternURLUserinfo, regexp.MustCompile(`(https?://)[^/@\s:]+:[^/@\s]+@`), "$1***@"},
}

// sensitiveKeys are key fragments that mark an attribute as a credential.
// Rack-style environment keys such as HTTP_AUTHORIZATION and HTTP_COOKIE
// match case-insensitively.
var sensitiveKeys = []string{
	"password", "passwd", "secret", "token",
	"api_key", "apikey", "authorization", "cookie",
	"private_key",
}

// NewRedactor creates a Redactor with the built-in patterns.
func NewRedactor() *Redactor {
	return &Redactor{patterns: defaultPatterns}
}

// ReplaceAttr is a slog.HandlerOptions.ReplaceAttr function.
func (r *Redactor) ReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		return a
	}
	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, maskValue(a.Value.String()))
	}
	if a.Value.Kind() == slog.KindString {
		if s := a.Value.String(); s != "" {
			return slog.String(a.Key, r.RedactString(s))
		}
	}
	return a
}

// RedactString masks inline secrets in value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, p := range r.patterns {
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

func isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(lowerKey, sensitive) {
			return true
		}
	}
	return false
}

// maskValue keeps the first four characters of longer values.
func maskValue(v string) string {
	if v == "" {
		return ""
	}
	if len(v) <= 8 {
		return "***"
	}
	return v[:4] + "***"
}
