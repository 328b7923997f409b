package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens/creates a SQLite DB file and ensures tables exist.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// SQLite handles a single writer; one connection also keeps ":memory:" shared.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

const sqliteDriverName = "sqlite"

const schemaRooms = `
CREATE TABLE IF NOT EXISTS rooms (
    id TEXT PRIMARY KEY,
    number TEXT NOT NULL,
    type TEXT NOT NULL DEFAULT 'room',
    state TEXT NOT NULL,
    last_cleaned TIMESTAMP,
    last_maintenance TIMESTAMP,
    cleaning_by TEXT
);
`

const schemaDeviceTokens = `
CREATE TABLE IF NOT EXISTS device_tokens (
    device_id TEXT PRIMARY KEY,
    token TEXT NOT NULL DEFAULT '',
    available BOOLEAN NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL,
    custom_message TEXT,
    message_sent_at TIMESTAMP
);
`

const schemaProblemReports = `
CREATE TABLE IF NOT EXISTS problem_reports (
    id TEXT PRIMARY KEY,
    room_number TEXT,
    location TEXT,
    is_general BOOLEAN NOT NULL DEFAULT 0,
    description TEXT NOT NULL,
    image_url TEXT,
    priority TEXT NOT NULL,
    employee_name TEXT,
    resolved BOOLEAN NOT NULL DEFAULT 0,
    reported_at TIMESTAMP NOT NULL
);
`

const schemaCleaningLogs = `
CREATE TABLE IF NOT EXISTS cleaning_logs (
    id TEXT PRIMARY KEY,
    room_id TEXT NOT NULL,
    room_number TEXT NOT NULL,
    started_at TIMESTAMP NOT NULL,
    ended_at TIMESTAMP NOT NULL,
    duration_minutes INTEGER NOT NULL,
    employee_name TEXT NOT NULL,
    device_id TEXT NOT NULL
);
`

const schemaMaintenanceLogs = `
CREATE TABLE IF NOT EXISTS maintenance_logs (
    id TEXT PRIMARY KEY,
    room_id TEXT NOT NULL,
    room_number TEXT NOT NULL,
    action TEXT NOT NULL,
    logged_at TIMESTAMP NOT NULL
);
`

const schemaTimerSessions = `
CREATE TABLE IF NOT EXISTS timer_sessions (
    room_id TEXT PRIMARY KEY,
    start_ms INTEGER NOT NULL,
    total_paused_ms INTEGER NOT NULL DEFAULT 0,
    pause_start_ms INTEGER NOT NULL DEFAULT 0,
    employee_name TEXT,
    room_number TEXT,
    device_id TEXT
);
`

func ensureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{
		schemaRooms,
		schemaDeviceTokens,
		schemaProblemReports,
		schemaCleaningLogs,
		schemaMaintenanceLogs,
		schemaTimerSessions,
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
