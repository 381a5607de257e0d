// Package repository implements the database access layer for the back
// office API. One repository per aggregate, all running against the
// swappable database.DB pool.
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a record with the given id does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("duplicate record")

	// ErrVersionConflict is returned when a compare-and-swap write loses a
	// race: the row's version no longer matches the one that was loaded.
	ErrVersionConflict = errors.New("concurrent modification detected")
)

// translateError maps PostgreSQL unique violations to ErrDuplicate.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}
