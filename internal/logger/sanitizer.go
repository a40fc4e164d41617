package logger

import (
	"fmt"
	"regexp"
	"strings"
)

// Sanitizer masks injected statement values to prevent accidental logging of
// secrets. It detects sensitive fields based on column names appearing in the
// raw statement text.
type Sanitizer struct {
	sensitiveFields []string
	maskValue       string
	// Compiled patterns for faster matching
	patterns []*regexp.Regexp
}

// NewSanitizer creates a new sanitizer with the specified sensitive field names.
// If no fields are provided, a default set of common sensitive field names is used.
func NewSanitizer(sensitiveFields []string) *Sanitizer {
	if len(sensitiveFields) == 0 {
		// Default sensitive field names (common patterns)
		sensitiveFields = []string{
			"password", "passwd", "pwd",
			"token", "api_key", "apikey", "api_token",
			"secret", "auth", "authorization",
			"credit_card", "card_number", "cvv", "cvc",
			"ssn", "social_security",
			"private_key", "priv_key",
		}
	}

	// Compile patterns for efficient matching
	patterns := make([]*regexp.Regexp, 0, len(sensitiveFields))
	for _, field := range sensitiveFields {
		// Match field name in SQL (case-insensitive, with word boundaries)
		pattern := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(field) + `\b`)
		patterns = append(patterns, pattern)
	}

	return &Sanitizer{
		sensitiveFields: sensitiveFields,
		maskValue:       "***REDACTED***",
		patterns:        patterns,
	}
}

// MaskValues masks injection values when the raw statement references a
// sensitive column name. It returns a new slice with sensitive values
// replaced by the mask value; unset (nil) entries stay nil. The original
// injection list is not modified.
func (s *Sanitizer) MaskValues(sql string, values []any) []any {
	if len(values) == 0 {
		return values
	}

	if !s.containsSensitivePattern(strings.ToLower(sql)) {
		return values
	}

	// A statement touching a sensitive column gets its whole injection list
	// masked; placeholder tokens carry no column affinity to narrow it down.
	masked := make([]any, len(values))
	for i, value := range values {
		if value == nil {
			continue
		}
		masked[i] = s.maskValue
	}

	return masked
}

// containsSensitivePattern checks if SQL contains any sensitive field patterns.
func (s *Sanitizer) containsSensitivePattern(sql string) bool {
	for _, pattern := range s.patterns {
		if pattern.MatchString(sql) {
			return true
		}
	}
	return false
}

// FormatValues converts an injection list to a safe string representation for
// logging. Sensitive values should be masked using MaskValues before calling
// this.
func (s *Sanitizer) FormatValues(values []any) string {
	if len(values) == 0 {
		return "[]"
	}

	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = s.formatValue(v)
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

// formatValue formats a single injection value for logging.
// Truncates very long strings to prevent log pollution.
func (s *Sanitizer) formatValue(v any) string {
	if v == nil {
		return "<unset>"
	}

	str := fmt.Sprintf("%v", v)

	// Truncate very long values
	const maxLen = 100
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}

	return str
}
