package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/amaravathi/marketplace/internal/domain/user"
	"github.com/amaravathi/marketplace/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	err := r.observe("users.create", func() error {
		return r.pool.QueryRow(
			ctx,
			`INSERT INTO users (first_name, email, password_hash, mobile_number, profile_image, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)
			 RETURNING id`,
			u.FirstName, u.Email, u.PasswordHash, u.MobileNumber, u.ProfileImage, u.CreatedAt, u.UpdatedAt,
		).Scan(&u.ID)
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return user.User{}, ErrEmailTaken
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, first_name, email, password_hash, mobile_number, profile_image, created_at, updated_at
			 FROM users
			 WHERE email = $1`,
			email,
		).Scan(
			&u.ID,
			&u.FirstName,
			&u.Email,
			&u.PasswordHash,
			&u.MobileNumber,
			&u.ProfileImage,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_id", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, first_name, email, password_hash, mobile_number, profile_image, created_at, updated_at
			 FROM users
			 WHERE id = $1`,
			id,
		).Scan(
			&u.ID,
			&u.FirstName,
			&u.Email,
			&u.PasswordHash,
			&u.MobileNumber,
			&u.ProfileImage,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}
	return u, nil
}
