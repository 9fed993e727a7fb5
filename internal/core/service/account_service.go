package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/staffdesk/auth-service/internal/core/domain"
	"github.com/staffdesk/auth-service/internal/core/ports"
)

const defaultResetTokenTTL = 10 * time.Minute

// AccountService implements the account lifecycle state machine:
// registration, approval/rejection, login, and password recovery.
type AccountService struct {
	repo     ports.AccountRepository
	tokens   *TokenService
	notifier ports.LifecycleNotifier
	resetTTL time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

func NewAccountService(
	repo ports.AccountRepository,
	tokens *TokenService,
	notifier ports.LifecycleNotifier,
	resetTTL time.Duration,
	log zerolog.Logger,
) *AccountService {
	if resetTTL <= 0 {
		resetTTL = defaultResetTokenTTL
	}
	return &AccountService{
		repo:     repo,
		tokens:   tokens,
		notifier: notifier,
		resetTTL: resetTTL,
		now:      time.Now,
		log:      log,
	}
}

// Register creates a self-registered account in pending state. The account
// cannot authenticate until an admin approves it.
func (s *AccountService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	return s.create(ctx, in, domain.RoleUser, domain.StatusPending)
}

// AdminCreate creates an approved account with the given role. The welcome
// notification carries the plaintext password exactly once, at creation time.
func (s *AccountService) AdminCreate(ctx context.Context, in ports.RegisterInput, role domain.Role) (*domain.Account, error) {
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	account, err := s.create(ctx, in, role, domain.StatusApproved)
	if err != nil {
		return nil, err
	}

	s.notifier.AccountCreated(account, in.Password)
	return account, nil
}

func (s *AccountService) create(ctx context.Context, in ports.RegisterInput, role domain.Role, status domain.AccountStatus) (*domain.Account, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if taken, err := s.repo.ExistsByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, domain.ErrAccountExists
	}
	if taken, err := s.repo.ExistsByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, domain.ErrAccountExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	account := &domain.Account{
		Username:      in.Username,
		Email:         in.Email,
		PasswordHash:  string(hash),
		Roles:         []domain.Role{role},
		Status:        status,
		ContactNumber: in.ContactNumber,
		EmployeeID:    in.EmployeeID,
		Designation:   in.Designation,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("username", created.Username).
		Str("status", string(created.Status)).
		Msg("account created")

	return created, nil
}

// Approve moves the account to approved. Approving an already-approved
// account is not an error.
func (s *AccountService) Approve(ctx context.Context, username string) (*domain.Account, error) {
	account, err := s.repo.SetStatus(ctx, username, domain.StatusApproved)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("username", username).Msg("account approved")
	s.notifier.AccountApproved(account)
	return account, nil
}

// Reject moves the account to rejected, symmetric to Approve.
func (s *AccountService) Reject(ctx context.Context, username string) (*domain.Account, error) {
	account, err := s.repo.SetStatus(ctx, username, domain.StatusRejected)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("username", username).Msg("account rejected")
	s.notifier.AccountRejected(account)
	return account, nil
}

// Login verifies credentials and the approval gate, then issues a bearer
// token carrying the account's current role set. An unknown username and a
// wrong password yield the identical error.
func (s *AccountService) Login(ctx context.Context, username, password string) (string, *domain.Account, error) {
	if username == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	if !account.Approved() {
		return "", nil, domain.ErrNotApproved
	}

	token, err := s.tokens.Issue(account.Username, account.Roles)
	if err != nil {
		return "", nil, err
	}

	return token, account, nil
}

// InitiatePasswordReset issues a fresh single-use reset token to the account
// holding email. An outstanding token is invalidated by overwrite.
func (s *AccountService) InitiatePasswordReset(ctx context.Context, email string) error {
	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := generateResetToken()
	if err != nil {
		return err
	}

	expiry := s.now().UTC().Add(s.resetTTL)
	if err := s.repo.SetResetToken(ctx, account.Username, token, expiry); err != nil {
		return err
	}

	s.log.Info().Str("username", account.Username).Msg("password reset initiated")
	s.notifier.PasswordReset(account, token)
	return nil
}

// ResetPassword consumes a reset token. Tokens are single-use regardless of
// outcome: the expired branch clears the stale token before failing.
func (s *AccountService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return domain.ErrInvalidResetToken
	}

	account, err := s.repo.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.ErrInvalidResetToken
		}
		return err
	}

	if !s.now().UTC().Before(account.ResetTokenExpiry) {
		if clearErr := s.repo.ClearResetToken(ctx, account.Username); clearErr != nil {
			s.log.Warn().Err(clearErr).Str("username", account.Username).Msg("failed to clear expired reset token")
		}
		return domain.ErrResetTokenExpired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	// Single atomic store operation: the password swap and the token
	// clearing either both happen or neither does.
	if _, err := s.repo.ResetPasswordByToken(ctx, token, string(hash)); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.ErrInvalidResetToken
		}
		return err
	}

	s.log.Info().Str("username", account.Username).Msg("password reset completed")
	return nil
}

// ChangePassword rotates the password for an authenticated caller after
// re-verifying the old one.
func (s *AccountService) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	if newPassword == "" {
		return domain.ErrInvalidCredentials
	}

	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(oldPassword)) != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(ctx, username, string(hash)); err != nil {
		return err
	}

	s.log.Info().Str("username", username).Msg("password changed")
	return nil
}

// generateResetToken returns a 128-bit random opaque token, hex encoded.
func generateResetToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
