package store

import (
	"database/sql"
	"fmt"
)

// schema lists migrations in order. The database's user_version records
// how many have been applied; append new steps, never edit old ones.
var schema = []string{
	// 1: credentials, a single row
	`CREATE TABLE auth (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		athlete_id INTEGER NOT NULL,
		access_token TEXT NOT NULL,
		refresh_token TEXT NOT NULL,
		expires_at INTEGER NOT NULL,
		updated_at TEXT DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE sync_state (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT DEFAULT CURRENT_TIMESTAMP
	)`,

	// 2: activities, only the fields the load model reads
	`CREATE TABLE activities (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		start_time_local TEXT NOT NULL,
		duration_seconds REAL NOT NULL,
		average_hr REAL,
		training_stress_score REAL,
		updated_at TEXT DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX idx_activities_start ON activities(start_time_local)`,

	// 3: rolling statistics per calendar day, tagged with the analysis run
	`CREATE TABLE risk_history (
		date TEXT PRIMARY KEY,
		daily_load REAL NOT NULL,
		acute REAL NOT NULL,
		chronic REAL NOT NULL,
		acwr REAL,
		status TEXT,
		run_id TEXT NOT NULL,
		computed_at TEXT DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX idx_risk_history_run ON risk_history(run_id)`,
}

// migrate brings the schema up to date, one transaction per step
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for v := version; v < len(schema); v++ {
		if err := applyMigration(db, v+1, schema[v]); err != nil {
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
	}
	return nil
}

func applyMigration(db *sql.DB, version int, stmts string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(stmts); err != nil {
		return err
	}
	// PRAGMA does not take bind parameters
	if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, version)); err != nil {
		return err
	}
	return tx.Commit()
}
