// Package store persists artists and songs in a relational database,
// reachable either as a local SQLite file or a Postgres server.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"

	"github.com/hamid659/csv-import/internal/config"
)

// Error wraps any store failure with the operation that produced it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// Store is a single shared connection handle, used sequentially by every
// phase of a run.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the database selected by cfg.Database.Driver.
func Open(cfg *config.Config) (*Store, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		return openSQLite(cfg.GetDBPath())
	case config.DriverPostgres:
		return openPostgres(cfg.Database)
	default:
		return nil, wrap("open", fmt.Errorf("unknown driver %q", cfg.Database.Driver))
	}
}

func openSQLite(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, wrap("open", fmt.Errorf("creating data directory: %w", err))
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrap("open", err)
	}

	// One connection: the run uses the handle sequentially, and the pragmas
	// below are per-connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, wrap("open", fmt.Errorf("setting journal mode: %w", err))
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, wrap("open", fmt.Errorf("enabling foreign keys: %w", err))
	}

	return &Store{db: db, driver: config.DriverSQLite}, nil
}

func openPostgres(cfg config.Database) (*Store, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, wrap("open", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, wrap("open", err)
	}

	return &Store{db: db, driver: config.DriverPostgres}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind converts ? placeholders to the $N form Postgres expects. Queries
// are written with ? and contain no literal question marks.
func (s *Store) rebind(query string) string {
	if s.driver != config.DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
		} else {
			b.WriteRune(ch)
		}
	}
	return b.String()
}
