package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/amaravathi/marketplace/internal/domain/vendor"
	"github.com/amaravathi/marketplace/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type VendorsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewVendorsRepo(pool *pgxpool.Pool, prom *observability.Prom) *VendorsRepo {
	return &VendorsRepo{pool: pool, prom: prom}
}

func (r *VendorsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const vendorColumns = `id, name, email, phone, business_name, category, address, latitude, longitude, status, profile_image, password_hash, created_at, updated_at`

func scanVendor(row pgx.Row) (vendor.Vendor, error) {
	var v vendor.Vendor

	err := row.Scan(
		&v.ID,
		&v.Name,
		&v.Email,
		&v.Phone,
		&v.BusinessName,
		&v.Category,
		&v.Address,
		&v.Latitude,
		&v.Longitude,
		&v.Status,
		&v.ProfileImage,
		&v.PasswordHash,
		&v.CreatedAt,
		&v.UpdatedAt,
	)

	return v, err
}

// duplicateError maps a unique violation on the vendors table to the field
// that collided.
func duplicateError(err error) error {
	if !IsUniqueViolation(err) {
		return err
	}

	if strings.Contains(constraintName(err), "phone") {
		return ErrPhoneTaken
	}

	return ErrEmailTaken
}

func (r *VendorsRepo) Create(ctx context.Context, v vendor.Vendor) (vendor.Vendor, error) {
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now

	err := r.observe("vendors.create", func() error {
		return r.pool.QueryRow(
			ctx,
			`INSERT INTO vendors (name, email, phone, business_name, category, address, latitude, longitude, status, profile_image, password_hash, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
			 RETURNING id`,
			v.Name, v.Email, v.Phone, v.BusinessName, v.Category, v.Address, v.Latitude, v.Longitude, v.Status, v.ProfileImage, v.PasswordHash, v.CreatedAt, v.UpdatedAt,
		).Scan(&v.ID)
	})

	if err != nil {
		return vendor.Vendor{}, duplicateError(err)
	}
	return v, nil
}

func (r *VendorsRepo) GetByEmail(ctx context.Context, email string) (vendor.Vendor, error) {
	var v vendor.Vendor
	var err error

	err = r.observe("vendors.get_by_email", func() error {
		v, err = scanVendor(r.pool.QueryRow(
			ctx,
			`SELECT `+vendorColumns+` FROM vendors WHERE email = $1`,
			email,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return vendor.Vendor{}, ErrVendorNotFound
		}

		return vendor.Vendor{}, err
	}
	return v, nil
}

func (r *VendorsRepo) GetByID(ctx context.Context, id int64) (vendor.Vendor, error) {
	var v vendor.Vendor
	var err error

	err = r.observe("vendors.get_by_id", func() error {
		v, err = scanVendor(r.pool.QueryRow(
			ctx,
			`SELECT `+vendorColumns+` FROM vendors WHERE id = $1`,
			id,
		))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return vendor.Vendor{}, ErrVendorNotFound
		}

		return vendor.Vendor{}, err
	}
	return v, nil
}

// List returns every vendor, newest first.
func (r *VendorsRepo) List(ctx context.Context) ([]vendor.Vendor, error) {
	var out []vendor.Vendor

	err := r.observe("vendors.list", func() error {
		rows, err := r.pool.Query(
			ctx,
			`SELECT `+vendorColumns+` FROM vendors ORDER BY created_at DESC, id DESC`,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]vendor.Vendor, 0)

		for rows.Next() {
			v, err := scanVendor(rows)

			if err != nil {
				return err
			}

			out = append(out, v)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// EmailTaken reports whether another vendor row (excluding excludeID) already
// uses the email.
func (r *VendorsRepo) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var taken bool

	err := r.observe("vendors.email_taken", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT EXISTS (SELECT 1 FROM vendors WHERE email = $1 AND id <> $2)`,
			email, excludeID,
		).Scan(&taken)
	})

	return taken, err
}

func (r *VendorsRepo) PhoneTaken(ctx context.Context, phone string, excludeID int64) (bool, error) {
	var taken bool

	err := r.observe("vendors.phone_taken", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT EXISTS (SELECT 1 FROM vendors WHERE phone = $1 AND id <> $2)`,
			phone, excludeID,
		).Scan(&taken)
	})

	return taken, err
}

// Update writes the full row back. Callers load the vendor, apply the partial
// update, then save.
func (r *VendorsRepo) Update(ctx context.Context, v vendor.Vendor) (vendor.Vendor, error) {
	err := r.observe("vendors.update", func() error {
		return r.pool.QueryRow(
			ctx,
			`UPDATE vendors
				SET name = $2,
						email = $3,
						phone = $4,
						business_name = $5,
						category = $6,
						address = $7,
						latitude = $8,
						longitude = $9,
						status = $10,
						profile_image = $11,
						password_hash = $12,
						updated_at = NOW()
			 WHERE id = $1
			 RETURNING updated_at`,
			v.ID, v.Name, v.Email, v.Phone, v.BusinessName, v.Category, v.Address, v.Latitude, v.Longitude, v.Status, v.ProfileImage, v.PasswordHash,
		).Scan(&v.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return vendor.Vendor{}, ErrVendorNotFound
		}

		return vendor.Vendor{}, duplicateError(err)
	}

	return v, nil
}

func (r *VendorsRepo) Delete(ctx context.Context, id int64) error {
	var tag int64

	err := r.observe("vendors.delete", func() error {
		res, err := r.pool.Exec(ctx, `DELETE FROM vendors WHERE id = $1`, id)

		if err != nil {
			return err
		}

		tag = res.RowsAffected()
		return nil
	})

	if err != nil {
		return err
	}

	if tag == 0 {
		return ErrVendorNotFound
	}

	return nil
}
