package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role is a portal role.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) String() string { return string(r) }

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

func ParseRoleFromString(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("%w: invalid role %q", ErrValidation, s)
	}
	return r, nil
}

// RoleGrant is the audit record of a role change.
type RoleGrant struct {
	ID        string
	ActorID   string
	TargetID  string
	Role      Role
	CreatedAt time.Time
}
