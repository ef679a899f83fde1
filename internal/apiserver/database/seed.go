package database

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/staylinehq/stayline/internal/common/config"
)

// SeedSuperAdmin creates the configured SYSTEM_ADMIN account if no user with
// that email exists yet. Reruns are no-ops.
func (s *Store) SeedSuperAdmin(ctx context.Context, cfg config.SuperAdminConfig) error {
	if cfg.Email == "" || cfg.Password == "" {
		return nil
	}

	_, err := s.GetUserByEmail(ctx, cfg.Email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &User{
		Name:      "Super Admin",
		Email:     cfg.Email,
		Password:  string(hash),
		Role:      RoleSystemAdmin,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.CreateUser(ctx, admin); err != nil {
		return err
	}
	s.logger.Info("seeded super admin account")
	return nil
}
