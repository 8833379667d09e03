package models

import (
	"fmt"
	"time"
)

// Role represents a user role; higher values include the permissions of lower ones
type Role int

const (
	RoleStudent    Role = 1
	RoleInstructor Role = 2
	RoleAdmin      Role = 3
)

// String returns the role name
func (r Role) String() string {
	switch r {
	case RoleStudent:
		return "student"
	case RoleInstructor:
		return "instructor"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// ParseRole converts a role name into a Role
func ParseRole(name string) (Role, error) {
	switch name {
	case "student":
		return RoleStudent, nil
	case "instructor":
		return RoleInstructor, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return 0, fmt.Errorf("%w: unknown role %q", ErrValidation, name)
	}
}

// User represents a platform user
type User struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// Actor is the caller of an operation. The zero value is an anonymous caller.
type Actor struct {
	UserID int
	Role   Role
}

// IsAnonymous reports whether the caller is not authenticated
func (a Actor) IsAnonymous() bool {
	return a.UserID == 0
}

// IsAdmin reports whether the caller is an admin
func (a Actor) IsAdmin() bool {
	return a.Role >= RoleAdmin
}

// CanManage reports whether the caller may author content owned by instructorID
func (a Actor) CanManage(instructorID int) bool {
	if a.IsAnonymous() {
		return false
	}
	return a.IsAdmin() || (a.Role >= RoleInstructor && a.UserID == instructorID)
}
