package journal

import (
	"database/sql"
	"fmt"
)

// migration is one forward-only schema step.
type migration struct {
	version    int
	name       string
	statements []string
}

// schemaMigrations are applied in order, each in its own transaction.
var schemaMigrations = []migration{
	{
		version: 1,
		name:    "create journal",
		statements: []string{
			`CREATE TABLE journal (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				engine_id TEXT NOT NULL,
				command_id TEXT,
				command_name TEXT,
				action TEXT NOT NULL,
				variations INTEGER NOT NULL DEFAULT 0,
				depth_undo INTEGER NOT NULL DEFAULT 0,
				depth_redo INTEGER NOT NULL DEFAULT 0,
				recorded_at TIMESTAMP NOT NULL
			);`,
			"CREATE INDEX idx_journal_engine_id ON journal(engine_id, id DESC);",
			"CREATE INDEX idx_journal_command_id ON journal(command_id);",
		},
	},
}

// SchemaVersion is the version a fully migrated journal reports.
var SchemaVersion = schemaMigrations[len(schemaMigrations)-1].version

// InitializeDatabase brings the journal schema up to SchemaVersion.
func InitializeDatabase(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS journal_schema (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`); err != nil {
		return fmt.Errorf("failed to create schema table: %w", err)
	}

	current, err := currentVersion(db)
	if err != nil {
		return err
	}
	for _, m := range schemaMigrations {
		if m.version <= current {
			continue
		}
		if err := m.apply(db); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
	}
	return nil
}

func currentVersion(db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM journal_schema").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

func (m migration) apply(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range m.statements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	if _, err := tx.Exec("INSERT INTO journal_schema (version, name) VALUES (?, ?)", m.version, m.name); err != nil {
		return err
	}
	return tx.Commit()
}
