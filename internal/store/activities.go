package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrActivityNotFound is returned when an activity doesn't exist
var ErrActivityNotFound = errors.New("activity not found")

// localTimeLayout stores the wall clock without an offset so that the
// calendar day survives a round trip unchanged.
const localTimeLayout = "2006-01-02T15:04:05"

const activityColumns = `id, source, name, start_time_local, duration_seconds, average_hr, training_stress_score`

// UpsertActivity inserts or updates an activity
func (db *DB) UpsertActivity(a *Activity) error {
	return upsertActivity(db.DB, a)
}

// UpsertActivities stores a batch of activities in a single transaction
func (db *DB) UpsertActivities(activities []Activity) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for i := range activities {
		if err := upsertActivity(tx, &activities[i]); err != nil {
			return fmt.Errorf("storing activity %s: %w", activities[i].ID, err)
		}
	}

	return tx.Commit()
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func upsertActivity(e execer, a *Activity) error {
	_, err := e.Exec(`
		INSERT INTO activities (`+activityColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			name = excluded.name,
			start_time_local = excluded.start_time_local,
			duration_seconds = excluded.duration_seconds,
			average_hr = excluded.average_hr,
			training_stress_score = excluded.training_stress_score,
			updated_at = CURRENT_TIMESTAMP
	`,
		a.ID, a.Source, a.Name, a.StartTimeLocal.Format(localTimeLayout),
		a.DurationSeconds, a.AverageHR, a.TrainingStressScore,
	)
	return err
}

// GetActivity retrieves an activity by ID
func (db *DB) GetActivity(id string) (*Activity, error) {
	row := db.QueryRow(`SELECT `+activityColumns+` FROM activities WHERE id = ?`, id)

	a, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActivityNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListActivitiesSince returns activities starting on or after since,
// ordered by start time ascending. A zero since returns everything.
func (db *DB) ListActivitiesSince(since time.Time) ([]Activity, error) {
	from := ""
	if !since.IsZero() {
		from = since.Format(localTimeLayout)
	}
	return db.queryActivities(`WHERE start_time_local >= ? ORDER BY start_time_local ASC`, from)
}

// ListActivities returns a page of activities, most recent first
func (db *DB) ListActivities(limit, offset int) ([]Activity, error) {
	return db.queryActivities(`ORDER BY start_time_local DESC LIMIT ? OFFSET ?`, limit, offset)
}

func (db *DB) queryActivities(tail string, args ...any) ([]Activity, error) {
	rows, err := db.Query(`SELECT `+activityColumns+` FROM activities `+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// CountActivities returns the total number of activities
func (db *DB) CountActivities() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM activities").Scan(&count)
	return count, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanActivity(s scanner) (*Activity, error) {
	var a Activity
	var start string
	var avgHR, tss sql.NullFloat64

	if err := s.Scan(&a.ID, &a.Source, &a.Name, &start, &a.DurationSeconds, &avgHR, &tss); err != nil {
		return nil, err
	}

	var err error
	a.StartTimeLocal, err = time.Parse(localTimeLayout, start)
	if err != nil {
		return nil, fmt.Errorf("parsing start_time_local %q: %w", start, err)
	}
	if avgHR.Valid {
		a.AverageHR = &avgHR.Float64
	}
	if tss.Valid {
		a.TrainingStressScore = &tss.Float64
	}
	return &a, nil
}
