package domain

import (
	"context"
	"time"
)

// RoleAssignmentRepo is read-only from this service's perspective.
// Assignments are granted and revoked by an external role-management process.
type RoleAssignmentRepo interface {
	// ListActive returns the assignments for a user that are active and not
	// expired at the given instant. Unknown users yield an empty slice, not
	// an error.
	ListActive(ctx context.Context, userID string, now time.Time) ([]RoleAssignment, error)
}

// Role is the privilege level assigned to a user.
type Role string

const (
	RoleGuest      Role = "guest"
	RoleMember     Role = "member"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Rank returns the position of the role in the privilege order
// guest < member < admin < super_admin. Unrecognized roles rank
// below guest so a corrupt assignment can never grant privilege.
func (r Role) Rank() int {
	switch r {
	case RoleGuest:
		return 1
	case RoleMember:
		return 2
	case RoleAdmin:
		return 3
	case RoleSuperAdmin:
		return 4
	default:
		return 0
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r.Rank() > 0
}

func (r Role) String() string {
	return string(r)
}

// EffectiveRole folds a set of assignments down to the single effective role:
// the highest-ranked one. An empty set degrades to guest.
func EffectiveRole(assignments []RoleAssignment) Role {
	effective := RoleGuest
	for _, a := range assignments {
		if a.Role.Rank() > effective.Rank() {
			effective = a.Role
		}
	}
	return effective
}

// RoleAssignment maps a user to a role. A user may hold several assignments
// at once; only active, unexpired ones count towards the effective role.
type RoleAssignment struct {
	ID        int        `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	UserID    string     `json:"user_id" gorm:"column:user_id;index"`
	Role      Role       `json:"role" gorm:"column:role"`
	IsActive  bool       `json:"is_active" gorm:"column:is_active"`
	GrantedAt time.Time  `json:"granted_at" gorm:"column:granted_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" gorm:"column:expires_at"`
}

func (RoleAssignment) TableName() string {
	return "role_assignments"
}

// Expired reports whether the assignment has an expiry in the past.
func (a RoleAssignment) Expired(now time.Time) bool {
	return a.ExpiresAt != nil && !a.ExpiresAt.After(now)
}
