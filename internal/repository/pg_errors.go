package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgStringTooLong       = "22001"
)

// ErrValueTooLong is returned when a text value exceeds its column length.
var ErrValueTooLong = errors.New("value too long for column")

// constraintViolated reports whether err is a PostgreSQL error with the given SQLSTATE
// raised by the named constraint or unique index.
func constraintViolated(err error, code, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code && pgErr.ConstraintName == constraint
}

func isUniqueViolation(err error, constraint string) bool {
	return constraintViolated(err, pgUniqueViolation, constraint)
}

func isForeignKeyViolation(err error, constraint string) bool {
	return constraintViolated(err, pgForeignKeyViolation, constraint)
}

func isValueTooLong(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgStringTooLong
}
