package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrImageNotFound is returned when an order references a catalog id the
// store does not hold. It covers both the existence check and a foreign key
// violation raised by the insert itself.
var ErrImageNotFound = errors.New("satellite image not found")

const foreignKeyViolation = "23503"

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}
