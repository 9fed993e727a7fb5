package domain

import "errors"

var (
	// ErrAccountExists is returned when a username or email is already taken.
	ErrAccountExists = errors.New("account already exists")
	// ErrAccountNotFound is returned when no account matches the lookup.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidCredentials covers both an unknown username and a password
	// mismatch so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotApproved is returned on login when credentials match but the
	// account is pending or rejected.
	ErrNotApproved = errors.New("account not approved")
	// ErrInvalidRole is returned when a role string is outside the closed set.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidToken is returned when a bearer token fails signature,
	// shape, or expiry verification.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidResetToken is returned when no account holds the reset token.
	ErrInvalidResetToken = errors.New("invalid reset token")
	// ErrResetTokenExpired is returned when a reset token is past its expiry.
	ErrResetTokenExpired = errors.New("reset token expired")
	// ErrForbidden is returned when the caller's roles do not permit the
	// requested operation.
	ErrForbidden = errors.New("access forbidden")
)
