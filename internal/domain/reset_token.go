package domain

import (
	"time"

	"github.com/uptrace/bun"
)

// ResetTokenTTL is how long a password reset token stays valid.
const ResetTokenTTL = time.Hour

// PasswordResetToken is a single-use, time-gated token allowing a user to
// set a new password without knowing the old one.
type PasswordResetToken struct {
	bun.BaseModel `bun:"table:password_reset_tokens,alias:prt"`

	Token     string    `bun:"token,pk" json:"-"`
	Login     string    `bun:"login,notnull" json:"login"`
	ExpiresAt time.Time `bun:"expires_at,nullzero,notnull" json:"expires_at"`
	Used      bool      `bun:"used,notnull,default:false" json:"used"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull" json:"created_at"`
}

// Usable reports whether the token can still redeem a password reset.
func (t *PasswordResetToken) Usable(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}
