package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrcore/internal/domain/audit"
	"hrcore/internal/domain/auth"
	"hrcore/internal/domain/org"
	"hrcore/internal/platform/config"
)

// Seed installs the global permission catalog and, when the seed variables are
// set, a first organization with an owner account. The catalog insert is
// idempotent; the org is only created if the admin user does not exist yet.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if err := seedPermissionCatalog(ctx, pool); err != nil {
		return err
	}

	if cfg.SeedOrgName == "" || cfg.SeedAdminEmail == "" || cfg.SeedAdminPassword == "" {
		return nil
	}

	auditSvc := audit.New(pool)
	authStore := auth.NewStore(pool)

	if _, err := authStore.FindUserByEmail(ctx, cfg.SeedAdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}
	userID, err := authStore.CreateUser(ctx, cfg.SeedAdminEmail, hash)
	if err != nil {
		return err
	}

	bootstrapper := org.NewBootstrapper(org.NewStore(pool), auditSvc)
	orgID, err := bootstrapper.Bootstrap(ctx, userID, cfg.SeedOrgName)
	if err != nil {
		return err
	}

	slog.Info("seeded initial organization", "org", orgID, "admin", cfg.SeedAdminEmail)
	return nil
}

func seedPermissionCatalog(ctx context.Context, pool *pgxpool.Pool) error {
	for _, key := range auth.DefaultPermissions {
		if _, err := pool.Exec(ctx, `
      INSERT INTO permissions (key)
      VALUES ($1)
      ON CONFLICT (key) DO NOTHING
    `, key); err != nil {
			return err
		}
	}
	return nil
}
