package catalog

import (
	"fmt"
	"regexp"
)

// MaxIdentifierLength matches the usual relational catalog limit.
const MaxIdentifierLength = 63

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ValidateIdentifier checks a schema, table, index or extension name.
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidIdentifier)
	}
	if len(name) > MaxIdentifierLength {
		return fmt.Errorf("%w: %q exceeds %d characters", ErrInvalidIdentifier, name, MaxIdentifierLength)
	}
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: %q (must be lowercase alphanumeric or underscore, not starting with a digit)",
			ErrInvalidIdentifier, name)
	}
	return nil
}
