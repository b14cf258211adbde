// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// modernc.org/sqlite is a pure Go translation of the SQLite C sources, so
// the binary cross-compiles without CGo. Use ":memory:" as the path for
// tests.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements every repository
// interface. One struct for all collections keeps the wiring in server.New
// to a single value.
type DB struct {
	conn *sql.DB
}

// New opens the database, applies the connection pragmas and runs
// migrations.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// A single connection serializes writers, which SQLite requires anyway,
	// and keeps ":memory:" databases from splitting across pool connections.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in flight, which matters
	// under concurrent request handling.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite. The cascade from
	// vehicles to their child rows depends on this pragma.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Defer it wherever New is called so the
// WAL is flushed on shutdown.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it
// idempotent across restarts.
//
// The UNIQUE constraints here are the storage backstop for the uniqueness
// guard: two requests can both pass the guard's pre-check when racing on the
// same value, and exactly one of them then fails the constraint at commit.
// ON DELETE CASCADE keeps the "no orphaned child" invariant: deleting a
// vehicle removes its service records and reminder settings in the same
// statement.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			name          TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role          TEXT NOT NULL DEFAULT '',
			photo         TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS vehicles (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id      INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			brand        TEXT NOT NULL,
			model        TEXT NOT NULL,
			plate_number TEXT NOT NULL UNIQUE,
			year         INTEGER NOT NULL,
			current_km   INTEGER NOT NULL,
			photo        TEXT NOT NULL DEFAULT '',
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_vehicles_user_id ON vehicles(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating vehicles table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS service_records (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			vehicle_id    INTEGER NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
			service_date  DATETIME NOT NULL,
			odometer_km   INTEGER NOT NULL,
			workshop      TEXT NOT NULL,
			service_title TEXT NOT NULL,
			cost          INTEGER NOT NULL,
			notes         TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_service_records_vehicle_id ON service_records(vehicle_id);
	`)
	if err != nil {
		return fmt.Errorf("creating service_records table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS reminder_settings (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			vehicle_id        INTEGER NOT NULL REFERENCES vehicles(id) ON DELETE CASCADE,
			type              TEXT NOT NULL,
			threshold_km      INTEGER,
			threshold_days    INTEGER,
			last_service_date DATETIME,
			last_service_km   INTEGER,
			next_due_km       INTEGER,
			created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (vehicle_id, type)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating reminder_settings table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
// modernc.org/sqlite exposes no typed constraint error, so the message is
// the stable surface to match on.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
