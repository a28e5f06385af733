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

var ErrSubCategoryNotFound = errors.New("subcategory not found")

type SubCategoriesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewSubCategoriesRepo(pool *pgxpool.Pool, prom *observability.Prom) *SubCategoriesRepo {
	return &SubCategoriesRepo{pool: pool, prom: prom}
}

func (r *SubCategoriesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *SubCategoriesRepo) Create(ctx context.Context, s taxonomy.SubCategory) (taxonomy.SubCategory, error) {
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now

	err := r.observe("subcategories.create", func() error {
		return r.pool.QueryRow(
			ctx,
			`INSERT INTO subcategories (name, category_id, description, status, profile_image, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)
			 RETURNING id`,
			s.Name, s.CategoryID, s.Description, s.Status, s.Profile, s.CreatedAt, s.UpdatedAt,
		).Scan(&s.ID)
	})

	if err != nil {
		// the parent category id does not exist
		if IsForeignKeyViolation(err) {
			return taxonomy.SubCategory{}, ErrCategoryNotFound
		}

		return taxonomy.SubCategory{}, err
	}
	return s, nil
}

// List returns every subcategory with the parent category name joined in.
func (r *SubCategoriesRepo) List(ctx context.Context) ([]taxonomy.SubCategory, error) {
	var out []taxonomy.SubCategory

	err := r.observe("subcategories.list", func() error {
		rows, err := r.pool.Query(
			ctx,
			`SELECT s.id, s.name, s.category_id, s.description, s.status, s.profile_image, s.created_at, s.updated_at, c.name
			 FROM subcategories s
			 JOIN categories c ON c.id = s.category_id
			 ORDER BY s.id ASC`,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]taxonomy.SubCategory, 0)

		for rows.Next() {
			var s taxonomy.SubCategory
			var parentName string

			err = rows.Scan(&s.ID, &s.Name, &s.CategoryID, &s.Description, &s.Status, &s.Profile, &s.CreatedAt, &s.UpdatedAt, &parentName)

			if err != nil {
				return err
			}

			s.Category = &taxonomy.CategoryRef{Name: parentName}
			out = append(out, s)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *SubCategoriesRepo) GetByID(ctx context.Context, id int64) (taxonomy.SubCategory, error) {
	var s taxonomy.SubCategory

	err := r.observe("subcategories.get_by_id", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, name, category_id, description, status, profile_image, created_at, updated_at
			 FROM subcategories
			 WHERE id = $1`,
			id,
		).Scan(&s.ID, &s.Name, &s.CategoryID, &s.Description, &s.Status, &s.Profile, &s.CreatedAt, &s.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return taxonomy.SubCategory{}, ErrSubCategoryNotFound
		}

		return taxonomy.SubCategory{}, err
	}
	return s, nil
}

func (r *SubCategoriesRepo) Update(ctx context.Context, s taxonomy.SubCategory) (taxonomy.SubCategory, error) {
	err := r.observe("subcategories.update", func() error {
		return r.pool.QueryRow(
			ctx,
			`UPDATE subcategories
				SET name = $2,
						category_id = $3,
						description = $4,
						status = $5,
						profile_image = $6,
						updated_at = NOW()
			 WHERE id = $1
			 RETURNING updated_at`,
			s.ID, s.Name, s.CategoryID, s.Description, s.Status, s.Profile,
		).Scan(&s.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return taxonomy.SubCategory{}, ErrSubCategoryNotFound
		}

		if IsForeignKeyViolation(err) {
			return taxonomy.SubCategory{}, ErrCategoryNotFound
		}

		return taxonomy.SubCategory{}, err
	}

	return s, nil
}

func (r *SubCategoriesRepo) Delete(ctx context.Context, id int64) error {
	var affected int64

	err := r.observe("subcategories.delete", func() error {
		res, err := r.pool.Exec(ctx, `DELETE FROM subcategories WHERE id = $1`, id)

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
		return ErrSubCategoryNotFound
	}

	return nil
}
