package models

import "time"

// Role names recognized by the system.
const (
	RoleEmployee = "EMPLOYEE"
	RoleHR       = "HR"
	RoleAdmin    = "ADMIN"
)

// User represents an account that can authenticate and record attendance.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // '-' means don't send in JSON response
	Role         string    `json:"role" db:"role"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// IsValidRole reports whether role is one of the recognized role names.
func IsValidRole(role string) bool {
	switch role {
	case RoleEmployee, RoleHR, RoleAdmin:
		return true
	}
	return false
}
