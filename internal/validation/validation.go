// Package validation checks API request fields and reports every failure
// at once, keyed by field name.
package validation

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/hyperengineering/searchbridge/internal/catalog"
)

// ValidationError is one failed field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Collector accumulates failures. Nil entries are ignored, so checks can be
// passed straight in.
type Collector struct {
	errors []ValidationError
}

func (c *Collector) Add(errs ...*ValidationError) {
	for _, err := range errs {
		if err != nil {
			c.errors = append(c.errors, *err)
		}
	}
}

// Errors returns the collected failures, nil when there were none.
func (c *Collector) Errors() []ValidationError {
	return c.errors
}

func ValidateUTF8(field, value string) *ValidationError {
	if utf8.ValidString(value) {
		return nil
	}
	return invalid(field, "must be valid UTF-8")
}

func ValidateNoNullBytes(field, value string) *ValidationError {
	if !strings.ContainsRune(value, 0) {
		return nil
	}
	return invalid(field, "must not contain null bytes")
}

// ValidateMaxLength counts runes, not bytes.
func ValidateMaxLength(field, value string, max int) *ValidationError {
	if utf8.RuneCountInString(value) <= max {
		return nil
	}
	return invalid(field, "exceeds maximum length of %d characters", max)
}

// ValidateRequired treats whitespace-only values as missing.
func ValidateRequired(field, value string) *ValidationError {
	if strings.TrimSpace(value) != "" {
		return nil
	}
	return invalid(field, "is required")
}

func ValidateEnum(field, value string, allowed []string) *ValidationError {
	if slices.Contains(allowed, value) {
		return nil
	}
	return invalid(field, "must be one of: %s", strings.Join(allowed, ", "))
}

// ValidateIdentifier applies the catalog naming rules.
func ValidateIdentifier(field, value string) *ValidationError {
	if catalog.ValidateIdentifier(value) == nil {
		return nil
	}
	return invalid(field, "must start with a lowercase letter or underscore, contain only lowercase letters, digits and underscores, and be at most %d characters",
		catalog.MaxIdentifierLength)
}

// ValidateHTTPURL requires an absolute http or https URL with a host.
func ValidateHTTPURL(field, value string) *ValidationError {
	u, err := url.Parse(value)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return nil
	}
	return invalid(field, "must be an absolute http or https URL")
}
