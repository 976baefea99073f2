package model

import "time"

// Role is the capability class of a user account.
type Role string

const (
	RoleLearner    Role = "learner"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

// ParseRole converts a stored or claimed role string into a Role.
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleLearner, RoleInstructor, RoleAdmin:
		return r, true
	default:
		return "", false
	}
}

func (r Role) String() string { return string(r) }

// User is a marketplace account. Email is unique across all roles.
//
// Account creation and login belong to the identity service; this module only reads
// users (and the seed command writes a few for local development).
type User struct {
	ID        string    `json:"id"        db:"id"`
	Email     string    `json:"email"     db:"email"`
	Name      string    `json:"name"      db:"name"`
	Role      Role      `json:"role"      db:"role"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
