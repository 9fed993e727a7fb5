package ports

import (
	"context"
	"time"

	"github.com/staffdesk/auth-service/internal/core/domain"
)

// AccountRepository defines persistence operations for accounts.
//
// Every mutation is a single-document operation so the store serializes
// concurrent updates per account; callers never need their own locking.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByResetToken(ctx context.Context, token string) (*domain.Account, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// SetStatus updates the lifecycle status and returns the updated account.
	SetStatus(ctx context.Context, username string, status domain.AccountStatus) (*domain.Account, error)
	UpdatePassword(ctx context.Context, username, passwordHash string) error
	// SetResetToken overwrites any outstanding reset token for the account.
	SetResetToken(ctx context.Context, username, token string, expiry time.Time) error
	ClearResetToken(ctx context.Context, username string) error
	// ResetPasswordByToken atomically swaps the password hash and clears the
	// reset token on the account holding token. Returns ErrAccountNotFound
	// when no account holds it, which makes the token single-use even under
	// concurrent consumption.
	ResetPasswordByToken(ctx context.Context, token, passwordHash string) (*domain.Account, error)
}
