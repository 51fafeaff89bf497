package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNoHistory is returned when no rolling statistics have been stored
var ErrNoHistory = errors.New("no risk history stored")

const dateLayout = "2006-01-02"

// SaveRiskHistory upserts the given days in one transaction
func (db *DB) SaveRiskHistory(entries []RiskEntry) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO risk_history (date, daily_load, acute, chronic, acwr, status, run_id, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(date) DO UPDATE SET
			daily_load = excluded.daily_load,
			acute = excluded.acute,
			chronic = excluded.chronic,
			acwr = excluded.acwr,
			status = excluded.status,
			run_id = excluded.run_id,
			computed_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(
			e.Date.Format(dateLayout), e.DailyLoad, e.Acute, e.Chronic, e.ACWR, e.Status, e.RunID,
		); err != nil {
			return fmt.Errorf("storing risk for %s: %w", e.Date.Format(dateLayout), err)
		}
	}

	return tx.Commit()
}

// ListRiskHistory returns up to limit of the most recent days, oldest first
func (db *DB) ListRiskHistory(limit int) ([]RiskEntry, error) {
	rows, err := db.Query(`
		SELECT date, daily_load, acute, chronic, acwr, status, run_id
		FROM (
			SELECT * FROM risk_history ORDER BY date DESC LIMIT ?
		)
		ORDER BY date ASC
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []RiskEntry
	for rows.Next() {
		e, err := scanRiskEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// LatestRisk returns the most recent stored day
func (db *DB) LatestRisk() (*RiskEntry, error) {
	row := db.QueryRow(`
		SELECT date, daily_load, acute, chronic, acwr, status, run_id
		FROM risk_history
		ORDER BY date DESC
		LIMIT 1
	`)

	e, err := scanRiskEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoHistory
	}
	return e, err
}

func scanRiskEntry(s scanner) (*RiskEntry, error) {
	var e RiskEntry
	var date string
	var acwr sql.NullFloat64
	var status sql.NullString

	if err := s.Scan(&date, &e.DailyLoad, &e.Acute, &e.Chronic, &acwr, &status, &e.RunID); err != nil {
		return nil, err
	}

	var err error
	e.Date, err = time.Parse(dateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("parsing date %q: %w", date, err)
	}
	if acwr.Valid {
		e.ACWR = &acwr.Float64
	}
	if status.Valid {
		e.Status = &status.String
	}
	return &e, nil
}
