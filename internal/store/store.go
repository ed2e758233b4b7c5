// Package store provides SQLite-backed persistence for board columns and
// events.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/gabbaihq/luach/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS columns (
	id            TEXT PRIMARY KEY,
	title         TEXT NOT NULL,
	position      INTEGER NOT NULL DEFAULT 0,
	column_type   TEXT NOT NULL,
	specific_date TEXT NOT NULL DEFAULT '',
	manual_order  INTEGER NOT NULL DEFAULT 0,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS events (
	id             TEXT PRIMARY KEY,
	column_id      TEXT NOT NULL REFERENCES columns(id) ON DELETE CASCADE,
	name           TEXT NOT NULL,
	event_type     TEXT NOT NULL,
	position       INTEGER NOT NULL DEFAULT 0,
	time_def       TEXT NOT NULL DEFAULT '',
	note           TEXT NOT NULL DEFAULT '',
	is_highlighted INTEGER NOT NULL DEFAULT 0,
	created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_events_column ON events(column_id);
`

// BoardStore defines the persistence operations the board needs. Consumers
// should depend on this interface rather than the concrete *DB type to
// facilitate testing with mocks.
type BoardStore interface {
	UpsertColumn(c models.Column) error
	GetColumn(id string) (*models.Column, error)
	ListColumns() ([]models.Column, error)
	DeleteColumn(id string) error

	UpsertEvent(e models.Event) error
	GetEvent(id string) (*models.Event, error)
	ListEvents(columnID string) ([]models.Event, error)
	ListAllEvents() ([]models.Event, error)
	DeleteEvent(id string) error
	ReorderEvents(columnID string, ids []string) error

	Close() error
}

// Verify *DB satisfies BoardStore at compile time.
var _ BoardStore = (*DB)(nil)

// DB wraps a sql.DB with board-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
