package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// migration is one additive schema step. Steps run in order on every open.
type migration struct {
	name string
	stmt string
}

// migrations is append-only. Later steps may assume earlier ones took effect,
// whether freshly applied or already present.
var migrations = []migration{
	{name: "documents.context", stmt: `ALTER TABLE documents ADD COLUMN context TEXT`},
	{name: "documents.embedding", stmt: `ALTER TABLE documents ADD COLUMN embedding TEXT`},
	{name: "events.status", stmt: `ALTER TABLE events ADD COLUMN status TEXT`},
	{name: "categories table", stmt: `
		CREATE TABLE IF NOT EXISTS categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			category TEXT NOT NULL,
			image_id TEXT NOT NULL,
			FOREIGN KEY (image_id) REFERENCES documents (id) ON DELETE CASCADE
		)`},
	{name: "categories.image_id index", stmt: `CREATE INDEX IF NOT EXISTS idx_categories_image_id ON categories(image_id)`},
	{name: "events.date index", stmt: `CREATE INDEX IF NOT EXISTS idx_events_date ON events(date)`},
}

// currentSchemaVersion is the user_version written after all steps ran.
var currentSchemaVersion = len(migrations)

// runMigrations applies every step in order. A step whose effect already
// exists is skipped; anything else aborts.
func (s *Store) runMigrations(ctx context.Context, db *sql.DB) error {
	for i, m := range migrations {
		if _, err := db.ExecContext(ctx, m.stmt); err != nil {
			if isDuplicateColumn(err) {
				s.log.Debug().Str("step", m.name).Msg("migration already applied")
				continue
			}
			return &Error{Code: CodeMigration, Op: fmt.Sprintf("migration %d (%s)", i+1, m.name), Err: err}
		}
		s.log.Debug().Str("step", m.name).Msg("migration applied")
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// isDuplicateColumn reports whether err is SQLite's "duplicate column name"
// failure for ALTER TABLE ... ADD COLUMN. Both drivers surface the engine's
// message text unchanged.
func isDuplicateColumn(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate column name")
}

// SchemaVersion returns the PRAGMA user_version of the open database.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("get user_version: %w", err)
	}
	return version, nil
}
