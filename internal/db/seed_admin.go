package db

import (
	"context"
	"errors"
	"time"

	"github.com/amaravathi/marketplace/internal/config"
	"github.com/amaravathi/marketplace/internal/domain/user"
	"github.com/amaravathi/marketplace/internal/security"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureAdminUser seeds a user account for the gated taxonomy routes. No-op
// unless ADMIN_EMAIL and ADMIN_PASSWORD are configured, and idempotent.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	email := user.NormalizeEmail(cfg.AdminEmail)

	// check if the user exists

	var dummy int64

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	_, err = pool.Exec(ctx,
		`INSERT INTO users (first_name, email, password_hash, mobile_number, profile_image, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		`,
		cfg.AdminName, email, hash, "", "", now, now,
	)

	return err
}
