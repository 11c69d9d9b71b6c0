// Package journal persists engine history events to SQLite so that past
// editing sessions can be inspected after the process exits.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/dshills/goundo/pkg/engine"
)

// DefaultListLimit is used by List when no positive limit is given.
const DefaultListLimit = 100

// Entry is one journaled history event.
type Entry struct {
	ID          int64     `json:"id"`
	EngineID    string    `json:"engine_id"`
	CommandID   string    `json:"command_id,omitempty"`
	CommandName string    `json:"command_name,omitempty"`
	Action      string    `json:"action"`
	Variations  int       `json:"variations"`
	UndoDepth   int       `json:"depth_undo"`
	RedoDepth   int       `json:"depth_redo"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// EntryFromEvent converts an engine event to a journal entry.
func EntryFromEvent(ev engine.Event) Entry {
	entry := Entry{
		EngineID:   ev.EngineID,
		Action:     string(ev.Action),
		UndoDepth:  ev.UndoDepth,
		RedoDepth:  ev.RedoDepth,
		RecordedAt: ev.Time,
	}
	if ev.Command != nil {
		entry.CommandID = ev.Command.ID
		entry.CommandName = ev.Command.Name
		entry.Variations = ev.Command.Size()
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now()
	}
	return entry
}

// Journal is a SQLite-backed, append-only log of history events.
type Journal struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal database at dbPath.
func Open(dbPath string) (*Journal, error) {
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := InitializeDatabase(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Append stores entry and returns its row ID.
func (j *Journal) Append(ctx context.Context, entry Entry) (int64, error) {
	if entry.EngineID == "" {
		return 0, errors.New("journal entry requires an engine ID")
	}
	if entry.Action == "" {
		return 0, errors.New("journal entry requires an action")
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now()
	}

	var commandID, commandName sql.NullString
	if entry.CommandID != "" {
		commandID = sql.NullString{String: entry.CommandID, Valid: true}
	}
	if entry.CommandName != "" {
		commandName = sql.NullString{String: entry.CommandName, Valid: true}
	}

	query := `
		INSERT INTO journal (
			engine_id, command_id, command_name, action, variations,
			depth_undo, depth_redo, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := j.db.ExecContext(ctx, query,
		entry.EngineID,
		commandID,
		commandName,
		entry.Action,
		entry.Variations,
		entry.UndoDepth,
		entry.RedoDepth,
		entry.RecordedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to append journal entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read journal entry id: %w", err)
	}
	return id, nil
}

// List returns the most recent entries first. An empty engineID lists every engine.
func (j *Journal) List(ctx context.Context, engineID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `
		SELECT id, engine_id, command_id, command_name, action, variations,
		       depth_undo, depth_redo, recorded_at
		FROM journal
	`
	args := []interface{}{}
	if engineID != "" {
		query += " WHERE engine_id = ?"
		args = append(args, engineID)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]Entry, 0)
	for rows.Next() {
		var entry Entry
		var commandID, commandName sql.NullString
		if err := rows.Scan(
			&entry.ID,
			&entry.EngineID,
			&commandID,
			&commandName,
			&entry.Action,
			&entry.Variations,
			&entry.UndoDepth,
			&entry.RedoDepth,
			&entry.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entry.CommandID = commandID.String
		entry.CommandName = commandName.String
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate journal: %w", err)
	}

	return entries, nil
}

// Count returns the number of entries recorded for engineID, or for every
// engine when engineID is empty.
func (j *Journal) Count(ctx context.Context, engineID string) (int, error) {
	query := "SELECT COUNT(*) FROM journal"
	args := []interface{}{}
	if engineID != "" {
		query += " WHERE engine_id = ?"
		args = append(args, engineID)
	}

	var n int
	if err := j.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count journal entries: %w", err)
	}
	return n, nil
}
