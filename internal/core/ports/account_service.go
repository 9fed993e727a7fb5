package ports

import (
	"context"

	"github.com/staffdesk/auth-service/internal/core/domain"
)

// RegisterInput carries the profile fields collected at account creation.
type RegisterInput struct {
	Username      string
	Email         string
	Password      string
	ContactNumber string
	EmployeeID    string
	Designation   string
}

// AccountService owns the account lifecycle state machine.
type AccountService interface {
	// Register creates a pending, self-registered account.
	Register(ctx context.Context, in RegisterInput) (*domain.Account, error)
	// AdminCreate creates an approved account with the given role and sends
	// the welcome notification carrying the plaintext password exactly once.
	AdminCreate(ctx context.Context, in RegisterInput, role domain.Role) (*domain.Account, error)
	Approve(ctx context.Context, username string) (*domain.Account, error)
	Reject(ctx context.Context, username string) (*domain.Account, error)
	// Login returns a signed bearer token on success.
	Login(ctx context.Context, username, password string) (string, *domain.Account, error)
	InitiatePasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error
}
