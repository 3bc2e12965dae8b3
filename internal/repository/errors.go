package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error code for unique constraint violations. The assign path
// relies on it to detect a concurrent insert racing past the order lock.
const codeUniqueViolation = "23505"

// IsDuplicate reports whether err is a unique constraint violation.
func IsDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// IsNotFound reports whether err means the query matched no rows.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
