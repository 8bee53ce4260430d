package repository

import (
	"errors"
	"fmt"
	"strings"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes the repositories translate into domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// translate wraps constraint violations with the matching domain error so
// callers can branch with errors.Is while keeping the backend detail.
func translate(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w: %s", op, model.ErrConflict, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: %w: %s", op, model.ErrNotFound, pgErr.ConstraintName)
		case pgCheckViolation:
			return fmt.Errorf("%s: %w: %s", op, checkError(pgErr.ConstraintName), pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func checkError(constraint string) error {
	switch {
	case strings.Contains(constraint, "price"):
		return model.ErrInvalidPrice
	case strings.Contains(constraint, "category"):
		return model.ErrInvalidCategory
	case strings.Contains(constraint, "day_of_week"):
		return model.ErrInvalidDay
	default:
		return model.ErrMissingField
	}
}
