package domain

import "time"

// Role identifies what a user is allowed to do. Roles are fixed at
// registration; there is no role-change operation.
type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleBusinessUser Role = "BUSINESS_USER"
	RoleDriver       Role = "DRIVER"
)

// Valid reports whether the role is one of the defined values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleBusinessUser, RoleDriver:
		return true
	}
	return false
}

// User is the domain model for every authenticated caller: administrators,
// business users who submit deliveries, and drivers who execute them.
type User struct {
	ID           string
	Email        string
	FullName     string
	PhoneNumber  string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
