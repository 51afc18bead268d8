package validation

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ValidateName checks the athlete's display name. Counted in runes so
// accented and non-latin names get the full length.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return errors.New("name is required")
	}
	if utf8.RuneCountInString(trimmed) > 100 {
		return errors.New("name must be 100 characters or fewer")
	}
	if strings.ContainsAny(trimmed, "\r\n\t") {
		return errors.New("name must not contain line breaks")
	}

	return nil
}
