package domain

import (
	"fmt"
	"time"
)

// Role is the closed set of roles an account may hold.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// ParseRole maps a wire string to a Role. Unknown values are rejected rather
// than coerced.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleUser:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrInvalidRole, s)
}

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// AccountStatus represents the lifecycle state of an account.
type AccountStatus string

const (
	StatusPending  AccountStatus = "pending"
	StatusApproved AccountStatus = "approved"
	StatusRejected AccountStatus = "rejected"
)

// Account models a credentialed actor in the system.
//
// Invariant: a non-empty ResetToken always has a non-zero ResetTokenExpiry;
// a consumed or expired token is cleared immediately (no reuse).
type Account struct {
	ID               string        `json:"id"`
	Username         string        `json:"username"`
	Email            string        `json:"email"`
	PasswordHash     string        `json:"-"`
	Roles            []Role        `json:"roles"`
	Status           AccountStatus `json:"status"`
	ContactNumber    string        `json:"contact_number,omitempty"`
	EmployeeID       string        `json:"employee_id,omitempty"`
	Designation      string        `json:"designation,omitempty"`
	ResetToken       string        `json:"-"`
	ResetTokenExpiry time.Time     `json:"-"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// HasRole reports whether the account holds the given role.
func (a *Account) HasRole(role Role) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Approved reports whether the account may authenticate.
func (a *Account) Approved() bool {
	return a.Status == StatusApproved
}
