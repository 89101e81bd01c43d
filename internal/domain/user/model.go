package user

import (
	"time"

	"github.com/chainvoice/chainvoice/internal/types"
)

// User is a pre-authenticated actor. Identity and credential handling live
// upstream; this service only consumes the resolved role and membership.
type User struct {
	ID        string         `db:"id" json:"id"`
	CompanyID string         `db:"company_id" json:"company_id"`
	Role      types.UserRole `db:"role" json:"role"`
	Email     string         `db:"email" json:"email"`
	Name      string         `db:"name" json:"name"`
	Status    types.Status   `db:"status" json:"status"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// IsSuperAdmin reports whether the user bypasses tenant scoping
func (u *User) IsSuperAdmin() bool {
	return u.Role == types.UserRoleSuperAdmin
}

// HasRole reports whether the user's role is one of the given roles
func (u *User) HasRole(roles ...types.UserRole) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
