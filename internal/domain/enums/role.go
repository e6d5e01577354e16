package enums

import "strings"

type Role string

const (
	RoleMember     Role = "MEMBER"
	RoleInstructor Role = "INSTRUCTOR"
	RoleOwner      Role = "OWNER"
)

// ParseRole normalizes case and surrounding whitespace; the zero Role is
// returned for anything outside the known set.
func ParseRole(value string) Role {
	role := Role(strings.ToUpper(strings.TrimSpace(value)))
	if !role.Valid() {
		return ""
	}
	return role
}

func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleInstructor, RoleOwner:
		return true
	}
	return false
}

// Staff reports whether the role may manage classes and sessions.
func (r Role) Staff() bool {
	return r == RoleInstructor || r == RoleOwner
}
