package models

import (
	"strings"
	"time"
)

// Role is the capability tier of a user account.
type Role string

const (
	RoleTenant Role = "tenant"
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
)

var roleRank = map[Role]int{
	RoleTenant: 0,
	RoleOwner:  1,
	RoleAdmin:  2,
}

// ParseRole maps a request-supplied role string to a Role. The empty
// string defaults to tenant.
func ParseRole(s string) (Role, bool) {
	if s == "" {
		return RoleTenant, true
	}
	r := Role(strings.ToLower(s))
	_, ok := roleRank[r]
	return r, ok
}

// Satisfies reports whether the role meets a required capability tier.
// Admin satisfies every check, owner satisfies owner and tenant checks.
func (r Role) Satisfies(required Role) bool {
	return roleRank[r] >= roleRank[required]
}

// User represents a user account in the system.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserSummary is the owner/tenant projection joined into listing and
// booking responses.
type UserSummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
