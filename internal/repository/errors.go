package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrDuplicate is returned when an insert hits a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrNotFound is returned by updates and deletes that matched no row.
	ErrNotFound = errors.New("record not found")
)

// Postgres SQLSTATE codes
const (
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02" // e.g. an id that is not a UUID
)

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// noRow reports whether a single-row lookup matched nothing. A malformed id
// cannot match any row, so it counts as well.
func noRow(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || hasCode(err, invalidTextRepresentation)
}

// mapMissing turns a malformed id on a write into ErrNotFound.
func mapMissing(err error) error {
	if hasCode(err, invalidTextRepresentation) {
		return ErrNotFound
	}
	return err
}

// constraintOf returns the violated unique constraint name, if any.
func constraintOf(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// mapDuplicate turns unique violations into ErrDuplicate and leaves other errors alone.
func mapDuplicate(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := constraintOf(err); ok {
		return errors.Join(ErrDuplicate, err)
	}
	return err
}

// IsConstraintViolation reports whether err is a unique violation of the named constraint.
func IsConstraintViolation(err error, constraint string) bool {
	name, ok := constraintOf(err)
	return ok && name == constraint
}
