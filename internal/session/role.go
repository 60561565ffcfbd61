package session

import (
	"errors"
	"fmt"
	"strings"
)

// Role is the privilege tag carried by every user.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

// Roles lists the roles in display order.
var Roles = []Role{RoleAdmin, RoleManager, RoleStaff}

var ErrUnknownRole = errors.New("unknown role")

// ParseRole normalises s and checks it against the fixed role set.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleStaff:
		return true
	}
	return false
}

// Title is the position label shown next to a person's name.
func (r Role) Title() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleManager:
		return "Manager"
	default:
		return "Staff"
	}
}

func (r Role) String() string { return string(r) }
