package domain

import "fmt"

// Role is a member's fixed capability tier within an organization.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// AllRoles lists every role, highest tier first.
var AllRoles = []Role{RoleOwner, RoleAdmin, RoleMember}

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// Assignable reports whether r can be granted by an invitation or a role
// change. Ownership is set at organization creation only.
func (r Role) Assignable() bool {
	return r == RoleAdmin || r == RoleMember
}

func (r Role) String() string { return string(r) }

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// RoleStrings converts roles for JSON responses and log attributes.
func RoleStrings(roles []Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
