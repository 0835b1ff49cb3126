package entity

import "strings"

// Role is the privilege level attached to a User.
// The zero value is the anonymous caller (no session).
type Role string

const (
	RoleAnonymous   Role = ""
	RoleReader      Role = "reader"
	RoleContributor Role = "contributor"
	RoleAdmin       Role = "admin"
)

// Roles lists the persisted roles, least privileged first.
var Roles = []Role{RoleReader, RoleContributor, RoleAdmin}

// ParseRole maps a stored value to a Role, degrading unknown values to reader.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleContributor:
		return RoleContributor
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleReader
	}
}

func (r Role) Valid() bool {
	return r == RoleReader || r == RoleContributor || r == RoleAdmin
}

func (r Role) String() string {
	if r == RoleAnonymous {
		return "anonymous"
	}
	return string(r)
}

// Title returns the display form used on post bylines ("Contributor").
func (r Role) Title() string {
	s := r.String()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
