package domain

import "time"

// Role enumerates account roles. Students submit tickets; admins manage them.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// ValidRole reports whether the value is one of the known roles.
func ValidRole(r Role) bool {
	return r == RoleStudent || r == RoleAdmin
}

// User is the domain model for people who report maintenance issues.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FullName     string
	Role         Role
	CreatedAt    time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
