package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrUniqueViolation is returned when an insert or update hits a unique
// constraint.
var ErrUniqueViolation = errors.New("unique constraint violated")

const pgUniqueViolation = "23505"

// mapPgError converts driver errors the callers branch on; everything else
// passes through untouched.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return &UniqueViolationError{Constraint: pgErr.ConstraintName, cause: err}
	}
	return err
}

// UniqueViolationError names the constraint that was hit.
type UniqueViolationError struct {
	Constraint string
	cause      error
}

func (e *UniqueViolationError) Error() string {
	return "unique constraint " + e.Constraint + " violated"
}

func (e *UniqueViolationError) Is(target error) bool {
	return target == ErrUniqueViolation
}

func (e *UniqueViolationError) Unwrap() error {
	return e.cause
}
