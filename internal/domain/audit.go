// Package domain holds the persistent entities of the recipebook service
// and the small capability types shared across layers.
package domain

import "time"

// Role is the authorization level of a user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Actor identifies who is performing an operation. It is passed explicitly
// to every mutating service method instead of being read from ambient
// request-scoped state.
type Actor struct {
	Login string
	Role  Role
}

// IsAdmin reports whether the actor holds the ADMIN role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Auditable is implemented by entities that carry audit fields. The
// repository layer invokes SetCreated right before insert and SetUpdated
// right before update. There are no ORM lifecycle hooks involved.
type Auditable interface {
	SetCreated(by string)
	SetUpdated(by string)
}

// AuditModel provides the shared audit columns. Embed it in entities that
// track who created and last changed them.
type AuditModel struct {
	CreatedAt time.Time `bun:"created_at,nullzero,notnull" json:"created_at"`
	CreatedBy string    `bun:"created_by,notnull" json:"created_by"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull" json:"updated_at"`
	UpdatedBy string    `bun:"updated_by,notnull" json:"updated_by"`
}

// SetCreated stamps the creation audit fields. Update fields are stamped
// too so a freshly inserted row is fully populated.
func (m *AuditModel) SetCreated(by string) {
	now := time.Now()
	m.CreatedAt = now
	m.CreatedBy = by
	m.UpdatedAt = now
	m.UpdatedBy = by
}

// SetUpdated stamps the update audit fields.
func (m *AuditModel) SetUpdated(by string) {
	m.UpdatedAt = time.Now()
	m.UpdatedBy = by
}
