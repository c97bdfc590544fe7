package domain

import "time"

// Role is the officer's tier within the unit. The three tiers form a
// total order: investigator < supervisor < admin.
type Role string

const (
	RoleInvestigator Role = "investigator"
	RoleSupervisor   Role = "supervisor"
	RoleAdmin        Role = "admin"
)

// Level returns the role's position in the hierarchy, 0 for unknown
// roles so that comparisons fail closed.
func (r Role) Level() int {
	switch r {
	case RoleInvestigator:
		return 1
	case RoleSupervisor:
		return 2
	case RoleAdmin:
		return 3
	default:
		return 0
	}
}

// Known reports whether the role is one of the three tiers.
func (r Role) Known() bool {
	return r.Level() > 0
}

// User is the officer profile authorized by a session token. Updates
// replace the whole record; it is never mutated field-by-field in the
// store.
type User struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FullName    string     `json:"fullName"`
	Role        Role       `json:"role"`
	Department  string     `json:"department"`
	BadgeNumber string     `json:"badgeNumber"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLogin   *time.Time `json:"lastLogin,omitempty"`
	IsActive    bool       `json:"isActive"`
}

// ProfileUpdate carries the fields an officer may change on their own
// profile. Nil fields are left untouched.
type ProfileUpdate struct {
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	FullName   *string `json:"fullName,omitempty"`
	Department *string `json:"department,omitempty"`
}

// Apply merges the update into a copy of the user and returns it.
func (p ProfileUpdate) Apply(u User) User {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Department != nil {
		u.Department = *p.Department
	}
	return u
}
