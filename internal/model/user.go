package model

import "time"

const (
	RoleDoctor = "doctor"
	RoleNurse  = "nurse"
	RoleAdmin  = "admin"
)

// ValidRole reports whether role is one of the fixed whitelist values.
func ValidRole(role string) bool {
	switch role {
	case RoleDoctor, RoleNurse, RoleAdmin:
		return true
	}
	return false
}

// User is the credential record. Reset token fields live on the user row:
// at most one unexpired token exists per user at any time.
type User struct {
	ID               string     `json:"id"`
	Username         string     `json:"username"`
	PasswordHash     string     `json:"-"`
	Role             string     `json:"role"`
	IsActive         bool       `json:"is_active"`
	ResetToken       *string    `json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
	LastLogin        *time.Time `json:"last_login,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// AuthUser is the identity slice that is safe to echo back to clients and to
// snapshot into a session.
type AuthUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
