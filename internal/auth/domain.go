package auth

import (
	"fmt"
	"strings"
	"time"
)

// Role is an authorization role.
type Role string

// Roles known to the console.
const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleUser       Role = "user"
)

// AdminRoles may enter the admin area.
var AdminRoles = []Role{RoleSuperAdmin, RoleAdmin}

// AllRoles lists every role in display order.
var AllRoles = []Role{RoleSuperAdmin, RoleAdmin, RoleUser}

// ParseRole validates a role name.
func ParseRole(value string) (Role, error) {
	role := Role(strings.TrimSpace(strings.ToLower(value)))
	if !role.Valid() {
		return "", fmt.Errorf("%w %q", ErrInvalidRole, value)
	}
	return role, nil
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleUser:
		return true
	}
	return false
}

// Label is the display name of the role.
func (r Role) Label() string {
	switch r {
	case RoleSuperAdmin:
		return "Super Admin"
	case RoleAdmin:
		return "Admin"
	case RoleUser:
		return "Usuario"
	}
	return string(r)
}

// In reports whether r is one of roles.
func (r Role) In(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}

// User is the acting identity.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

// Snapshot flattens the user for audit before/after records.
func (u User) Snapshot() map[string]any {
	snap := map[string]any{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"role":  string(u.Role),
	}
	if u.Avatar != "" {
		snap["avatar"] = u.Avatar
	}
	return snap
}

// Session is the persisted authentication record. IsAuthenticated is true
// exactly when User is set.
type Session struct {
	IsAuthenticated bool       `json:"isAuthenticated"`
	User            *User      `json:"user"`
	LoginTime       *time.Time `json:"loginTime,omitempty"`
}

// Valid checks the session invariant.
func (s Session) Valid() bool {
	if s.IsAuthenticated != (s.User != nil) {
		return false
	}
	if s.User != nil && (!s.User.Role.Valid() || s.User.Email == "") {
		return false
	}
	return true
}

// Credentials are submitted at sign-in.
type Credentials struct {
	Identifier string
	Secret     string
}

// UserPatch carries the profile fields a user may change. Nil fields are
// left untouched.
type UserPatch struct {
	Name   *string
	Email  *string
	Avatar *string
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Avatar == nil
}

// Account is a directory record used to verify credentials.
type Account struct {
	Email        string `yaml:"email"`
	Name         string `yaml:"name"`
	Role         Role   `yaml:"role"`
	PasswordHash string `yaml:"password_hash"`
	Active       bool   `yaml:"active"`
}
