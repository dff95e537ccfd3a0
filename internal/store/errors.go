package store

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrKeyNotFoundOrClaimed is returned when a claim attempt matches no
	// unclaimed, unexpired key. Unknown, already-claimed, and expired keys
	// are deliberately collapsed into one error so callers cannot probe
	// which case occurred.
	ErrKeyNotFoundOrClaimed = errors.New("api key not found or already claimed")

	// ErrDuplicateEmail is returned when an insert violates an email
	// uniqueness constraint.
	ErrDuplicateEmail = errors.New("email already registered")
)

// isUniqueViolation reports whether err is a unique-constraint violation
// from any of the supported drivers.
func isUniqueViolation(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	// modernc.org/sqlite surfaces constraint violations as plain errors.
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "constraint failed")
}
