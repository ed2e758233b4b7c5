package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gabbaihq/luach/internal/apperr"
	"github.com/gabbaihq/luach/internal/models"
)

// UpsertColumn inserts or replaces a column.
func (db *DB) UpsertColumn(c models.Column) error {
	_, err := db.conn.Exec(`
		INSERT INTO columns (id, title, position, column_type, specific_date, manual_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title         = excluded.title,
			position      = excluded.position,
			column_type   = excluded.column_type,
			specific_date = excluded.specific_date,
			manual_order  = excluded.manual_order,
			updated_at    = excluded.updated_at
	`, c.ID, c.Title, c.Order, c.ColumnType, c.SpecificDate, c.ManualOrder, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: upsert column: %w", err)
	}
	return nil
}

// GetColumn returns a column by id, or apperr.ErrNotFound.
func (db *DB) GetColumn(id string) (*models.Column, error) {
	row := db.conn.QueryRow(`
		SELECT id, title, position, column_type, specific_date, manual_order, created_at, updated_at
		FROM columns WHERE id = ?`, id)
	c, err := scanColumn(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get column: %w", err)
	}
	return c, nil
}

// ListColumns returns all columns ordered by position, then title.
func (db *DB) ListColumns() ([]models.Column, error) {
	rows, err := db.conn.Query(`
		SELECT id, title, position, column_type, specific_date, manual_order, created_at, updated_at
		FROM columns ORDER BY position, title`)
	if err != nil {
		return nil, fmt.Errorf("store: list columns: %w", err)
	}
	defer rows.Close()

	var out []models.Column
	for rows.Next() {
		c, err := scanColumn(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan column: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// DeleteColumn removes a column; its events go with it (FK cascade).
func (db *DB) DeleteColumn(id string) error {
	res, err := db.conn.Exec(`DELETE FROM columns WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete column: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// UpsertEvent inserts or replaces an event.
func (db *DB) UpsertEvent(e models.Event) error {
	def, err := marshalDef(e.TimeDefinition)
	if err != nil {
		return err
	}
	_, err = db.conn.Exec(`
		INSERT INTO events (id, column_id, name, event_type, position, time_def, note, is_highlighted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			column_id      = excluded.column_id,
			name           = excluded.name,
			event_type     = excluded.event_type,
			position       = excluded.position,
			time_def       = excluded.time_def,
			note           = excluded.note,
			is_highlighted = excluded.is_highlighted,
			updated_at     = excluded.updated_at
	`, e.ID, e.ColumnID, e.Name, e.Type, e.Order, def, e.Note, e.IsHighlighted, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: upsert event: %w", err)
	}
	return nil
}

// GetEvent returns an event by id, or apperr.ErrNotFound.
func (db *DB) GetEvent(id string) (*models.Event, error) {
	row := db.conn.QueryRow(`
		SELECT id, column_id, name, event_type, position, time_def, note, is_highlighted, created_at, updated_at
		FROM events WHERE id = ?`, id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get event: %w", err)
	}
	return e, nil
}

// ListEvents returns one column's events ordered by position, then name.
func (db *DB) ListEvents(columnID string) ([]models.Event, error) {
	return db.queryEvents(`
		SELECT id, column_id, name, event_type, position, time_def, note, is_highlighted, created_at, updated_at
		FROM events WHERE column_id = ? ORDER BY position, name`, columnID)
}

// ListAllEvents returns every event on the board.
func (db *DB) ListAllEvents() ([]models.Event, error) {
	return db.queryEvents(`
		SELECT id, column_id, name, event_type, position, time_def, note, is_highlighted, created_at, updated_at
		FROM events ORDER BY column_id, position, name`)
}

// DeleteEvent removes an event.
func (db *DB) DeleteEvent(id string) error {
	res, err := db.conn.Exec(`DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// ReorderEvents renumbers a column's events to match ids, transactionally.
// Every id must name an event in that column.
func (db *DB) ReorderEvents(columnID string, ids []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	stmt, err := tx.Prepare(`UPDATE events SET position = ? WHERE id = ? AND column_id = ?`)
	if err != nil {
		return fmt.Errorf("store: prepare reorder: %w", err)
	}
	defer stmt.Close()

	for i, id := range ids {
		res, err := stmt.Exec(i, id, columnID)
		if err != nil {
			return fmt.Errorf("store: reorder: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("store: reorder event %s: %w", id, apperr.ErrNotFound)
		}
	}
	return tx.Commit()
}

func (db *DB) queryEvents(query string, args ...any) ([]models.Event, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list events: %w", err)
	}
	defer rows.Close()

	var out []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan event: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanColumn(s scanner) (*models.Column, error) {
	var c models.Column
	err := s.Scan(&c.ID, &c.Title, &c.Order, &c.ColumnType, &c.SpecificDate,
		&c.ManualOrder, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanEvent(s scanner) (*models.Event, error) {
	var (
		e   models.Event
		def string
	)
	err := s.Scan(&e.ID, &e.ColumnID, &e.Name, &e.Type, &e.Order, &def,
		&e.Note, &e.IsHighlighted, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if def != "" {
		var td models.TimeDefinition
		if err := json.Unmarshal([]byte(def), &td); err != nil {
			return nil, fmt.Errorf("time definition for %s: %w", e.ID, err)
		}
		e.TimeDefinition = &td
	}
	return &e, nil
}

func marshalDef(def *models.TimeDefinition) (string, error) {
	if def == nil {
		return "", nil
	}
	b, err := json.Marshal(def)
	if err != nil {
		return "", fmt.Errorf("store: marshal time definition: %w", err)
	}
	return string(b), nil
}
