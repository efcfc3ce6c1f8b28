/*
Package sql implements persistent storage using the postgres database.
*/
package sql

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mjgale/cams/internal"
)

// Error converts an error from the underlying pgx driver into an error
// meaningful to the rest of the system.
func Error(err error) error {
	var pgErr *pgconn.PgError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return internal.ErrResourceNotFound
	case errors.As(err, &pgErr):
		if pgErr.Code == "23505" { // unique violation
			return internal.ErrResourceAlreadyExists
		}
		return err
	default:
		return err
	}
}
