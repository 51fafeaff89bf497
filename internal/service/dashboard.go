package service

import (
	"errors"
	"fmt"
	"time"

	"loadwatch/internal/acwr"
	"loadwatch/internal/load"
	"loadwatch/internal/store"
)

// TrendDays is how many days of history the dashboard chart shows
const TrendDays = 28

// QueryService provides read-only views over stored data
type QueryService struct {
	store *store.DB
}

// NewQueryService creates a new query service
func NewQueryService(db *store.DB) *QueryService {
	return &QueryService{store: db}
}

// DashboardData contains all data needed for the dashboard
type DashboardData struct {
	// Latest is nil until an analysis has stored a day with a defined ratio
	Latest *acwr.Summary

	// For charts
	ACWRHistory []float64
	ACWRDates   []time.Time
	DailyLoads  []float64

	ActivityCount int
	LastSync      time.Time // zero if never synced
	LastAnalysis  time.Time
}

// GetDashboardData fetches all data needed for the dashboard
func (q *QueryService) GetDashboardData() (*DashboardData, error) {
	data := &DashboardData{}

	var err error
	if data.ActivityCount, err = q.store.CountActivities(); err != nil {
		return nil, fmt.Errorf("counting activities: %w", err)
	}
	if data.LastSync, err = q.store.GetSyncTime(store.KeyLastStravaSync); err != nil {
		return nil, fmt.Errorf("reading sync time: %w", err)
	}
	if data.LastAnalysis, err = q.store.GetSyncTime(store.KeyLastAnalysis); err != nil {
		return nil, fmt.Errorf("reading analysis time: %w", err)
	}

	latest, err := q.store.LatestRisk()
	switch {
	case errors.Is(err, store.ErrNoHistory):
		return data, nil
	case err != nil:
		return nil, fmt.Errorf("reading latest risk: %w", err)
	}
	if s, ok := summaryFromEntry(*latest); ok {
		data.Latest = &s
	}

	history, err := q.store.ListRiskHistory(TrendDays)
	if err != nil {
		return nil, fmt.Errorf("reading risk history: %w", err)
	}
	for _, e := range history {
		data.DailyLoads = append(data.DailyLoads, e.DailyLoad)
		if e.ACWR == nil {
			continue
		}
		data.ACWRHistory = append(data.ACWRHistory, *e.ACWR)
		data.ACWRDates = append(data.ACWRDates, e.Date)
	}

	return data, nil
}

// summaryFromEntry rebuilds a summary from a stored day. ok is false when
// the day has no ratio.
func summaryFromEntry(e store.RiskEntry) (acwr.Summary, bool) {
	if e.ACWR == nil {
		return acwr.Summary{}, false
	}
	return acwr.Summary{
		Date:        e.Date,
		ACWR:        e.ACWR,
		AcuteLoad:   e.Acute,
		ChronicLoad: e.Chronic,
		Status:      acwr.Classify(*e.ACWR),
	}, true
}

// ActivityLoad pairs a stored activity with the load each metric would give it
type ActivityLoad struct {
	Activity store.Activity
	TSS      *float64
	HRLoad   *float64 // duration in minutes times average HR
	Source   load.Source
}

// GetActivitiesList returns a page of activities, most recent first, with
// the per-record load values
func (q *QueryService) GetActivitiesList(limit, offset int) ([]ActivityLoad, error) {
	activities, err := q.store.ListActivities(limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}

	out := make([]ActivityLoad, len(activities))
	for i, a := range activities {
		rec := a.Record()
		al := ActivityLoad{Activity: a, Source: load.SourceMissing}
		if rec.HasHR() {
			v := rec.HRProxy()
			al.HRLoad = &v
			al.Source = load.SourceHRProxy
		}
		if rec.HasTSS() {
			al.TSS = rec.TrainingStressScore
			al.Source = load.SourceTSS
		}
		out[i] = al
	}
	return out, nil
}

// GetTotalActivityCount returns the number of stored activities
func (q *QueryService) GetTotalActivityCount() (int, error) {
	return q.store.CountActivities()
}
