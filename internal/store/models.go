package store

import (
	"time"

	"loadwatch/internal/load"
)

// Auth represents OAuth tokens for Strava API access
type Auth struct {
	AthleteID    int64     `db:"athlete_id"`
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	ExpiresAt    time.Time `db:"expires_at"`
}

// Activity sources
const (
	SourceStrava = "strava"
	SourceGarmin = "garmin"
)

// Activity is a stored raw activity record
type Activity struct {
	ID                  string    `db:"id"` // source-prefixed, e.g. "strava:123"
	Source              string    `db:"source"`
	Name                string    `db:"name"`
	StartTimeLocal      time.Time `db:"start_time_local"` // wall clock, zone dropped
	DurationSeconds     float64   `db:"duration_seconds"`
	AverageHR           *float64  `db:"average_hr"`            // nullable
	TrainingStressScore *float64  `db:"training_stress_score"` // nullable
}

// Record converts the stored activity into a load record
func (a Activity) Record() load.ActivityRecord {
	return load.ActivityRecord{
		ID:                  a.ID,
		StartTime:           a.StartTimeLocal,
		DurationSeconds:     a.DurationSeconds,
		AverageHR:           a.AverageHR,
		TrainingStressScore: a.TrainingStressScore,
	}
}

// ActivityFromRecord wraps a load record for storage
func ActivityFromRecord(source, name string, r load.ActivityRecord) Activity {
	return Activity{
		ID:                  r.ID,
		Source:              source,
		Name:                name,
		StartTimeLocal:      r.StartTime,
		DurationSeconds:     r.DurationSeconds,
		AverageHR:           r.AverageHR,
		TrainingStressScore: r.TrainingStressScore,
	}
}

// RiskEntry is one stored day of rolling statistics
type RiskEntry struct {
	Date      time.Time `db:"date"`
	DailyLoad float64   `db:"daily_load"`
	Acute     float64   `db:"acute"`
	Chronic   float64   `db:"chronic"`
	ACWR      *float64  `db:"acwr"`   // nullable
	Status    *string   `db:"status"` // nullable, follows acwr
	RunID     string    `db:"run_id"`
}
