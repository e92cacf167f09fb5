// Package database is the sqlite-backed store for rooms, series and
// reservations.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// ErrConflict is returned when an insert would overlap an existing
// reservation in the same room. The overlap re-check runs inside the write
// transaction, so it is the authoritative conflict signal under concurrency.
var ErrConflict = errors.New("database: reservation overlaps an existing booking")

// ErrNotFound is returned when a referenced room or series does not exist.
var ErrNotFound = errors.New("database: not found")

// ErrRoomReferenced is returned when deleting a room that still has
// reservations pointing at it.
var ErrRoomReferenced = errors.New("database: room still has reservations")

// DB wraps sql.DB for the scheduler.
type DB struct {
	*sql.DB
}

// NewDB opens the database at path and runs migrations.
func NewDB(path string) (*DB, error) {
	// _txlock=immediate makes write transactions take the database lock up
	// front, so the in-transaction conflict re-check and the insert are
	// serialized against concurrent writers. Foreign keys are set on the DSN
	// so every pooled connection enforces them.
	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &DB{db}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		// Rooms
		`CREATE TABLE IF NOT EXISTS rooms (
			room_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			capacity INTEGER NOT NULL CHECK (capacity > 0),
			equipment TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Series (one row per recurring request)
		`CREATE TABLE IF NOT EXISTS series (
			series_id TEXT PRIMARY KEY,
			capacity INTEGER NOT NULL,
			repetition INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Reservations (one row per occurrence)
		`CREATE TABLE IF NOT EXISTS reservations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			series_id TEXT NOT NULL,
			room_id TEXT NOT NULL,
			time_start DATETIME NOT NULL,
			time_end DATETIME NOT NULL,
			competency TEXT NOT NULL DEFAULT '',
			number_of_students INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (series_id) REFERENCES series(series_id),
			FOREIGN KEY (room_id) REFERENCES rooms(room_id)
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_reservations_room_times ON reservations(room_id, time_start, time_end)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_series ON reservations(series_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_start ON reservations(time_start)`,
		`CREATE INDEX IF NOT EXISTS idx_rooms_capacity ON rooms(capacity)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration %s: %w", trimSQL(q), err)
		}
	}
	return nil
}

func trimSQL(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}

// PingContext reports whether the database is reachable.
func (db *DB) PingContext(ctx context.Context) error {
	return db.DB.PingContext(ctx)
}
