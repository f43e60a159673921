package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taktplan/internal/config"
	"github.com/phrazzld/taktplan/internal/domain"
	"github.com/phrazzld/taktplan/internal/service"
)

// seedUsers creates the default manager and employee accounts unless
// they already exist. Existing accounts are left untouched.
func seedUsers(ctx context.Context, users service.UserService, cfg config.SeedConfig, logger *slog.Logger) error {
	if cfg.Password == "" {
		return errors.New("seeding requires seed.password to be set")
	}

	accounts := []struct {
		email string
		role  domain.Role
	}{
		{cfg.ManagerEmail, domain.RoleManager},
		{cfg.EmployeeEmail, domain.RoleEmployee},
	}

	for _, account := range accounts {
		if account.email == "" {
			continue
		}
		user, created, err := users.EnsureUser(ctx, account.email, cfg.Password, account.role)
		if err != nil {
			return fmt.Errorf("failed to seed %s account: %w", account.role, err)
		}
		if created {
			logger.Info("seeded default account",
				slog.String("user_id", user.ID.String()),
				slog.String("role", string(user.Role)))
		} else if user.Role != account.role {
			logger.Warn("default account exists with a different role",
				slog.String("user_id", user.ID.String()),
				slog.String("role", string(user.Role)))
		}
	}

	return nil
}
