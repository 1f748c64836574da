package pg

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrEmptyConnectionString = errors.New("pg: empty connection string")
	ErrParseConfig           = errors.New("pg: failed to parse connection config")
	ErrConnect               = errors.New("pg: failed to open connection")
	ErrHealthcheckFailed     = errors.New("pg: healthcheck failed")
	ErrMigrationFailed       = errors.New("pg: failed to apply migrations")
	ErrMigrationsDirMissing  = errors.New("pg: migrations directory not found")
)

// IsNotFound detects pgx.ErrNoRows for uniform "row not found" handling.
func IsNotFound(err error) bool {
	return err != nil && errors.Is(err, pgx.ErrNoRows)
}

// IsDuplicateKey detects unique constraint violations (SQLSTATE 23505).
func IsDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsForeignKeyViolation detects referential integrity violations (SQLSTATE 23503).
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
