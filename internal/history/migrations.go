package history

import (
	"database/sql"
	"fmt"
)

// migration is a single versioned schema change.
type migration struct {
	version int
	name    string
	up      string
}

// allMigrations contains every schema change after the initial schema, in
// order. Migrations must be safe to apply to a freshly created database.
var allMigrations = []migration{
	{
		version: 1,
		name:    "Index run_requests by run and position",
		up: `
			CREATE INDEX IF NOT EXISTS idx_run_requests_order ON run_requests(run_id, position);
		`,
	},
}

// initSchema creates the current tables. It must run before migrations so
// older databases and fresh ones converge on the same schema.
func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL,
		collection_file TEXT NOT NULL,
		collection_name TEXT NOT NULL,
		users INTEGER NOT NULL,
		interval_ms INTEGER NOT NULL,
		total_ms INTEGER NOT NULL,
		stagger INTEGER NOT NULL DEFAULT 0,
		requests INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);

	CREATE TABLE IF NOT EXISTS run_requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		count INTEGER NOT NULL,
		avg_ms INTEGER NOT NULL,
		min_ms INTEGER NOT NULL,
		max_ms INTEGER NOT NULL,
		p50_ms INTEGER NOT NULL,
		p90_ms INTEGER NOT NULL,
		p95_ms INTEGER NOT NULL,
		p99_ms INTEGER NOT NULL,
		codes TEXT NOT NULL,
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_run_requests_run_id ON run_requests(run_id);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return nil
}

// migrate brings the database up to the current schema version.
func migrate(db *sql.DB) error {
	if err := initSchema(db); err != nil {
		return err
	}

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var currentVersion int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	for _, m := range allMigrations {
		if m.version <= currentVersion {
			continue
		}

		if _, err := db.Exec(m.up); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.version, m.name, err)
		}

		_, err = db.Exec(
			"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
			m.version,
			m.name,
		)
		if err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version of the store.
func (s *Store) SchemaVersion() (int, error) {
	var version int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}
