package domain

import "strings" // String normalisation

// Role is a position in the account hierarchy
type Role string

// Roles from least to most privileged
const (
	RoleUser       Role = "user"
	RoleSuperagent Role = "superagent"
	RoleManager    Role = "manager"
	RoleOwner      Role = "owner"
)

// Roles lists every role from least to most privileged
var Roles = []Role{RoleUser, RoleSuperagent, RoleManager, RoleOwner}

// Rank returns the privilege rank of the role, 0 for unknown roles
func (r Role) Rank() int {
	switch r {
	case RoleUser:
		return 1
	case RoleSuperagent:
		return 2
	case RoleManager:
		return 3
	case RoleOwner:
		return 4
	}
	return 0
}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool { return r.Rank() > 0 }

// AtLeast reports whether r is as privileged as other
func (r Role) AtLeast(other Role) bool {
	return r.Valid() && r.Rank() >= other.Rank()
}

func (r Role) String() string { return string(r) }

// ParseRole converts a case-insensitive name into a Role
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}
