package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/amaravathi/marketplace/internal/domain/taxonomy"
	"github.com/amaravathi/marketplace/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CategoriesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewCategoriesRepo(pool *pgxpool.Pool, prom *observability.Prom) *CategoriesRepo {
	return &CategoriesRepo{pool: pool, prom: prom}
}

func (r *CategoriesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *CategoriesRepo) Create(ctx context.Context, c taxonomy.Category) (taxonomy.Category, error) {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	err := r.observe("categories.create", func() error {
		return r.pool.QueryRow(
			ctx,
			`INSERT INTO categories (name, description, status, profile_image, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6)
			 RETURNING id`,
			c.Name, c.Description, c.Status, c.Profile, c.CreatedAt, c.UpdatedAt,
		).Scan(&c.ID)
	})

	if err != nil {
		return taxonomy.Category{}, err
	}
	return c, nil
}

func (r *CategoriesRepo) List(ctx context.Context) ([]taxonomy.Category, error) {
	var out []taxonomy.Category

	err := r.observe("categories.list", func() error {
		rows, err := r.pool.Query(
			ctx,
			`SELECT id, name, description, status, profile_image, created_at, updated_at
			 FROM categories
			 ORDER BY id ASC`,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]taxonomy.Category, 0)

		for rows.Next() {
			var c taxonomy.Category

			err = rows.Scan(&c.ID, &c.Name, &c.Description, &c.Status, &c.Profile, &c.CreatedAt, &c.UpdatedAt)

			if err != nil {
				return err
			}

			out = append(out, c)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *CategoriesRepo) GetByID(ctx context.Context, id int64) (taxonomy.Category, error) {
	var c taxonomy.Category

	err := r.observe("categories.get_by_id", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, name, description, status, profile_image, created_at, updated_at
			 FROM categories
			 WHERE id = $1`,
			id,
		).Scan(&c.ID, &c.Name, &c.Description, &c.Status, &c.Profile, &c.CreatedAt, &c.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return taxonomy.Category{}, ErrCategoryNotFound
		}

		return taxonomy.Category{}, err
	}
	return c, nil
}

func (r *CategoriesRepo) Update(ctx context.Context, c taxonomy.Category) (taxonomy.Category, error) {
	err := r.observe("categories.update", func() error {
		return r.pool.QueryRow(
			ctx,
			`UPDATE categories
				SET name = $2,
						description = $3,
						status = $4,
						profile_image = $5,
						updated_at = NOW()
			 WHERE id = $1
			 RETURNING updated_at`,
			c.ID, c.Name, c.Description, c.Status, c.Profile,
		).Scan(&c.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return taxonomy.Category{}, ErrCategoryNotFound
		}

		return taxonomy.Category{}, err
	}

	return c, nil
}

// Delete removes the category; subcategories referencing it go with it via
// the FK's ON DELETE CASCADE.
func (r *CategoriesRepo) Delete(ctx context.Context, id int64) error {
	var affected int64

	err := r.observe("categories.delete", func() error {
		res, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)

		if err != nil {
			return err
		}

		affected = res.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return ErrCategoryNotFound
	}

	return nil
}
