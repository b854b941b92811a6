package domain

import (
	"time"

	"github.com/uptrace/bun"
)

// User is an account that can authenticate and own catalog entries.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID                int64      `bun:"id,pk,autoincrement" json:"id"`
	Login             string     `bun:"login,notnull,unique" json:"login"`
	PasswordHash      string     `bun:"password_hash,notnull" json:"-"`
	Email             string     `bun:"email,notnull" json:"email"`
	Role              Role       `bun:"role,notnull,default:'USER'" json:"role"`
	CreatedAt         time.Time  `bun:"created_at,nullzero,notnull" json:"created_at"`
	PasswordChangedAt *time.Time `bun:"password_changed_at,nullzero" json:"password_changed_at,omitempty"`
	PasswordChangedBy *string    `bun:"password_changed_by" json:"-"`
}

// Actor returns the identity this user acts under.
func (u *User) Actor() Actor {
	return Actor{Login: u.Login, Role: u.Role}
}
