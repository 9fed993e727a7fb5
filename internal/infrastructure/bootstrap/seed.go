// Package bootstrap holds idempotent startup routines that run once at
// process start, outside the lifecycle core.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/staffdesk/auth-service/internal/core/domain"
	"github.com/staffdesk/auth-service/internal/core/ports"
	"github.com/staffdesk/auth-service/internal/pkg/config"
)

// SeedDefaultAdmin creates the default admin account when it does not exist
// yet. Guarded by a store existence check so restarts are no-ops; a
// concurrent replica losing the create race is also a no-op. Seeding is
// skipped when no seed password is configured.
func SeedDefaultAdmin(ctx context.Context, repo ports.AccountRepository, cfg config.SeedConfig, log zerolog.Logger) error {
	if cfg.AdminPassword == "" {
		log.Warn().Msg("no seed admin password configured, skipping default admin creation")
		return nil
	}

	exists, err := repo.ExistsByUsername(ctx, cfg.AdminUsername)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if exists {
		log.Debug().Str("username", cfg.AdminUsername).Msg("default admin already exists")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	now := time.Now().UTC()
	_, err = repo.Create(ctx, &domain.Account{
		Username:     cfg.AdminUsername,
		Email:        cfg.AdminEmail,
		PasswordHash: string(hash),
		Roles:        []domain.Role{domain.RoleAdmin},
		Status:       domain.StatusApproved,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAccountExists) {
			return nil
		}
		return fmt.Errorf("seed admin: %w", err)
	}

	log.Info().Str("username", cfg.AdminUsername).Msg("default admin created")
	return nil
}
