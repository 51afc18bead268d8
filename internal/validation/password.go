package validation

import (
	"errors"
	"strings"
)

// Substrings that mark a password as guessable. The product name is
// in the list because people reuse it constantly.
var weakSubstrings = []string{
	"password",
	"12345",
	"qwerty",
	"letmein",
	"iloveyou",
	"habitedge",
}

// ValidatePassword enforces the optional-password rules: length 12 to
// 72 and none of the usual guessable patterns. The upper bound is
// bcrypt's, which truncates beyond 72 bytes instead of erroring.
func ValidatePassword(password string) error {
	if len(password) < 12 {
		return errors.New("password must be at least 12 characters")
	}
	if len(password) > 72 {
		return errors.New("password must be at most 72 characters")
	}

	lower := strings.ToLower(password)
	for _, weak := range weakSubstrings {
		if strings.Contains(lower, weak) {
			return errors.New("password is too easy to guess")
		}
	}

	return nil
}
