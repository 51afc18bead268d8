package model

import (
	"time"
)

// Token is a single-use secret for email sign-in links. Both the
// magic link and forgot password flows issue one.
type Token struct {
	ID        string     `db:"id"`
	UserID    string     `db:"user_id"`
	Type      string     `db:"type"`
	Token     string     `db:"token"`
	ExpiresAt time.Time  `db:"expires_at"`
	UsedAt    *time.Time `db:"used_at"`
	CreatedAt time.Time  `db:"created_at"`
}

// Expiry and single-use are enforced in the consume query, so the
// model carries no validity logic of its own.
const (
	TokenTypeMagicLink      = "magic_link"
	TokenTypeForgotPassword = "forgot_password"
)
