package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrVendorNotFound   = errors.New("vendor not found")
	ErrCategoryNotFound = errors.New("category not found")

	// Duplicate contact fields. The application-level pre-checks are early
	// rejection only; the unique indexes are the correctness mechanism and
	// these errors also surface when a concurrent insert wins the race.
	ErrEmailTaken = errors.New("email already exists")
	ErrPhoneTaken = errors.New("phone number already exists")
)

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return true
	}
	return false
}

// constraintName extracts the violated constraint, used to tell a duplicate
// email from a duplicate phone on the vendors table.
func constraintName(err error) string {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}
