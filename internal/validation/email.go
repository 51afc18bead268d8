package validation

import (
	"errors"
	"net/mail"
)

// ValidateEmail checks the address a login or magic link would go to.
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email address is required")
	}

	// RFC 5321 caps the full address at 254 octets
	if len(email) > 254 {
		return errors.New("email address is too long")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil {
		return errors.New("invalid email address")
	}

	// ParseAddress also accepts "Name <a@b>" forms; the API stores
	// bare addresses only.
	if addr.Address != email {
		return errors.New("invalid email address")
	}

	return nil
}
