package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const sqliteDriverName = "sqlite"

// InitDB opens/creates a SQLite DB file and ensures tables exist.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// single writer; reconciliation transactions serialize through it
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

const schemaHeaterTrackers = `
CREATE TABLE IF NOT EXISTS heater_trackers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    printer_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    target REAL NOT NULL,
    reached BOOLEAN NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    UNIQUE (printer_id, name)
);
`

const schemaHeaterEvents = `
CREATE TABLE IF NOT EXISTS heater_events (
    id TEXT PRIMARY KEY,
    printer_id INTEGER NOT NULL,
    heater TEXT NOT NULL,
    kind TEXT NOT NULL,
    actual REAL NOT NULL,
    target REAL NOT NULL,
    offset_c REAL NOT NULL DEFAULT 0,
    occurred_at TIMESTAMP NOT NULL
);
`

const indexHeaterEvents = `
CREATE INDEX IF NOT EXISTS idx_heater_events_printer_time
    ON heater_events (printer_id, occurred_at);
`

// EnsureSchema creates the tables in one transaction. Safe to call repeatedly.
func EnsureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{
		schemaHeaterTrackers,
		schemaHeaterEvents,
		indexHeaterEvents,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
