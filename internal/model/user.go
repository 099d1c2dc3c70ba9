package model

import (
	"fmt"
	"time"
)

// User is a portal account.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Verified     bool       `json:"is_verified"`
	Banned       bool       `json:"is_banned"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// IsAdmin reports whether the user may use the admin console.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role.Can(CapAdminister)
}

// Role is the closed set of account roles.
type Role string

// Roles.
const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Roles lists every valid role, in display order.
var Roles = []Role{RoleStudent, RoleAdmin}

// ParseRole converts a form or token value into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Capability is an action gated by role.
type Capability int

// Capabilities.
const (
	CapReport Capability = iota
	CapClaim
	CapAdminister
)

// Can reports whether the role grants the capability.
// Unknown roles fail closed.
func (r Role) Can(c Capability) bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleStudent:
		return c == CapReport || c == CapClaim
	}
	return false
}

// Username and password limits.
const (
	UsernameMinLen = 3
	UsernameMaxLen = 20
	PasswordMinLen = 6
)

// ValidatePassword checks the minimum password requirements.
func ValidatePassword(password string) error {
	if len(password) < PasswordMinLen {
		return fmt.Errorf("password must be at least %d characters", PasswordMinLen)
	}
	return nil
}

// ValidateUsername checks the username length limits.
func ValidateUsername(username string) error {
	if n := len(username); n < UsernameMinLen || n > UsernameMaxLen {
		return fmt.Errorf("username must be between %d and %d characters", UsernameMinLen, UsernameMaxLen)
	}
	return nil
}
