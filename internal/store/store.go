package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Store is the persistence layer for API keys, registered users, and admin
// accounts. It is constructed once at startup and injected into every
// component that needs it; there is no ambient global handle.
type Store struct {
	db     *sqlx.DB
	driver string
}

// Options configures the backing database connection.
type Options struct {
	// Driver is one of "mysql", "postgres", or "sqlite".
	Driver string
	// DSN is the driver-specific connection string. For sqlite, an empty
	// DSN or ":memory:" opens an in-memory database.
	DSN string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// driverName maps the public driver identifier to the registered
// database/sql driver.
func driverName(driver string) (string, error) {
	switch driver {
	case "mysql":
		return "mysql", nil
	case "postgres", "pgx":
		return "pgx", nil
	case "sqlite", "sqlite3":
		return "sqlite", nil
	default:
		return "", fmt.Errorf("unsupported driver %q", driver)
	}
}

// Open connects to the database, applies the connection pool bounds, and
// runs migrations. The returned Store is safe for concurrent use.
func Open(opts Options) (*Store, error) {
	name, err := driverName(opts.Driver)
	if err != nil {
		return nil, err
	}

	dsn := opts.DSN
	switch name {
	case "sqlite":
		if dsn == "" {
			dsn = ":memory:"
		}
	case "mysql":
		// DATETIME columns must scan into time.Time.
		if !strings.Contains(dsn, "parseTime") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + "parseTime=true"
		}
	}

	db, err := sqlx.Connect(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	maxOpen := opts.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	maxIdle := opts.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 5
	}
	if name == "sqlite" {
		maxOpen = 1 // SQLite doesn't support concurrent writes
		maxIdle = 1
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	s := &Store{db: db, driver: name}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

// Ping verifies the database is reachable. Used by the readiness probe.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// insertID executes an INSERT and returns the generated row id. Postgres has
// no LastInsertId, so the query is extended with a RETURNING clause there.
func (s *Store) insertID(ctx context.Context, ext sqlx.ExtContext, query string, args ...interface{}) (int64, error) {
	if s.driver == "pgx" {
		var id int64
		q := ext.Rebind(query + " RETURNING id")
		if err := sqlx.GetContext(ctx, ext, &id, q, args...); err != nil {
			return 0, err
		}
		return id, nil
	}

	result, err := ext.ExecContext(ctx, ext.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}
