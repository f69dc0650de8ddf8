package models

import (
	"fmt"
	"strings"
)

type Role string

const (
	// RoleUnknown is used when the role couldn't be resolved. It is never treated as RoleUser.
	RoleUnknown Role = ""
	RoleUser    Role = "user"
	RoleAdmin   Role = "admin"
	RoleOwner   Role = "owner"
)

func ToRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(RoleUser):
		return RoleUser, nil
	case string(RoleAdmin):
		return RoleAdmin, nil
	case string(RoleOwner):
		return RoleOwner, nil
	default:
		return RoleUnknown, fmt.Errorf("invalid role: %q", s)
	}
}

// RoleFromFlags maps the wire privilege flags to a role. Both flags set is rejected.
func RoleFromFlags(isAdmin, isOwner bool) (Role, error) {
	switch {
	case isAdmin && isOwner:
		return RoleUnknown, ErrInvalidRoleCombination
	case isOwner:
		return RoleOwner, nil
	case isAdmin:
		return RoleAdmin, nil
	default:
		return RoleUser, nil
	}
}

// Flags is the inverse of RoleFromFlags.
func (r Role) Flags() (isAdmin bool, isOwner bool) {
	return r == RoleAdmin, r == RoleOwner
}

func (r Role) IsKnown() bool {
	return r == RoleUser || r == RoleAdmin || r == RoleOwner
}

// IsPrivileged reports whether admin screens may be rendered for the role.
func (r Role) IsPrivileged() bool {
	return r == RoleAdmin || r == RoleOwner
}

// CanGrant reports whether a principal with role r may request target for somebody else.
// Owners may set any role, admins may only grant admin.
func (r Role) CanGrant(target Role) bool {
	switch r {
	case RoleOwner:
		return target.IsKnown()
	case RoleAdmin:
		return target == RoleAdmin
	default:
		return false
	}
}

func (r Role) String() string {
	if r == RoleUnknown {
		return "unknown"
	}
	return string(r)
}
