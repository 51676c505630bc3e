// Package sqlite implements the item, notification and watch-state stores on
// an embedded SQLite database, for single-host deployments that do not want
// to run Postgres.
package sqlite

import (
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure Go SQLite driver
)

// Open opens (creating if needed) the database at path. WAL keeps readers
// from blocking the writer; SQLite allows only one writer, so the pool is
// capped at a single connection.
func Open(path string) (*sqlx.DB, error) {
	dsn := path
	if strings.Contains(dsn, "?") {
		dsn += "&"
	} else {
		dsn += "?"
	}
	dsn += "_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return db, nil
}

// Migrate creates the schema when missing. SQLite deployments have no
// external migration step, so the process bootstraps its own tables.
func Migrate(db *sqlx.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS items (
			listing_id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			price REAL,
			team TEXT,
			brand TEXT,
			size TEXT,
			condition TEXT,
			image_url TEXT,
			url TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			reason TEXT,
			first_seen_at TIMESTAMP NOT NULL,
			listed_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			listing_id TEXT NOT NULL,
			channel TEXT NOT NULL,
			sent_at TIMESTAMP NOT NULL,
			PRIMARY KEY (listing_id, channel)
		)`,
		`CREATE TABLE IF NOT EXISTS watch_state (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source_id TEXT NOT NULL UNIQUE,
			last_cycle_at TIMESTAMP NOT NULL,
			total_scanned INTEGER NOT NULL DEFAULT 0,
			total_approved INTEGER NOT NULL DEFAULT 0
		)`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
