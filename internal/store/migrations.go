package store

import "fmt"

// schema holds one entry per schema version. Entry i upgrades a database
// at user_version i to i+1; applied entries must never be edited.
var schema = [][]string{
	{
		`CREATE TABLE IF NOT EXISTS captures (
			id TEXT PRIMARY KEY,
			mood TEXT NOT NULL CHECK(mood IN ('happy', 'sad', 'angry', 'surprised')),
			gesture TEXT NOT NULL DEFAULT 'none',
			message TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_captures_created_at ON captures(created_at)`,
	},
	{
		`CREATE TABLE IF NOT EXISTS deliveries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			capture_id TEXT NOT NULL REFERENCES captures(id) ON DELETE CASCADE,
			plugin_name TEXT NOT NULL,
			success INTEGER NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_deliveries_capture_id ON deliveries(capture_id)`,
	},
}

// SchemaVersion is the user_version of a fully migrated database.
var SchemaVersion = len(schema)

// runMigrations applies every schema step newer than the database's
// user_version, each in its own transaction.
func (s *Store) runMigrations() error {
	var current int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if current > len(schema) {
		return fmt.Errorf("database schema version %d is newer than supported %d", current, len(schema))
	}

	for v := current; v < len(schema); v++ {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		for _, stmt := range schema[v] {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return fmt.Errorf("migration %d: %w", v+1, err)
			}
		}
		// PRAGMA does not accept bound parameters.
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", v+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
	}

	return nil
}

// Version returns the database's schema version.
func (s *Store) Version() (int, error) {
	var v int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&v)
	return v, err
}
