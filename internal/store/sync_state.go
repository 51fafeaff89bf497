package store

import (
	"database/sql"
	"errors"
	"time"
)

// Sync state keys
const (
	KeyLastStravaSync = "last_strava_sync"
	KeyLastImport     = "last_import"
	KeyLastAnalysis   = "last_analysis"
)

// GetSyncState retrieves a sync state value by key.
// Returns empty string if key doesn't exist.
func (db *DB) GetSyncState(key string) (string, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM sync_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SetSyncState sets a sync state value
func (db *DB) SetSyncState(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO sync_state (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// GetSyncTime reads a timestamp stored with SetSyncTime.
// A missing or unparsable value yields the zero time.
func (db *DB) GetSyncTime(key string) (time.Time, error) {
	value, err := db.GetSyncState(key)
	if err != nil || value == "" {
		return time.Time{}, err
	}
	t, parseErr := time.Parse(time.RFC3339, value)
	if parseErr != nil {
		return time.Time{}, nil
	}
	return t, nil
}

// SetSyncTime stores a timestamp under key
func (db *DB) SetSyncTime(key string, t time.Time) error {
	return db.SetSyncState(key, t.Format(time.RFC3339))
}
