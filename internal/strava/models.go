package strava

import (
	"strconv"
	"time"

	"loadwatch/internal/load"
)

// Activity represents a Strava activity summary from the API
type Activity struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Type             string    `json:"type"`
	SportType        string    `json:"sport_type"`
	StartDate        time.Time `json:"start_date"`
	StartDateLocal   time.Time `json:"start_date_local"` // wall clock, reported with a Z suffix
	Timezone         string    `json:"timezone"`
	MovingTime       int       `json:"moving_time"`  // seconds
	ElapsedTime      int       `json:"elapsed_time"` // seconds
	AverageHeartrate float64   `json:"average_heartrate"`
	HasHeartrate     bool      `json:"has_heartrate"`
	SufferScore      *int      `json:"suffer_score"`
}

// RecordID returns the source-prefixed identifier used in storage
func (a Activity) RecordID() string {
	return "strava:" + strconv.FormatInt(a.ID, 10)
}

// Record converts the activity into a load record. Strava reports no
// training-stress-score, so the load falls back to the HR proxy.
func (a Activity) Record() load.ActivityRecord {
	rec := load.ActivityRecord{
		ID:              a.RecordID(),
		StartTime:       a.StartDateLocal,
		DurationSeconds: float64(a.MovingTime),
	}
	if a.HasHeartrate && a.AverageHeartrate > 0 {
		hr := a.AverageHeartrate
		rec.AverageHR = &hr
	}
	return rec
}
