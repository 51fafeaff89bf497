package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"loadwatch/internal/load"
	"loadwatch/internal/store"
	"loadwatch/internal/strava"
)

// ActivityFetcher lists activities from a remote source
type ActivityFetcher interface {
	GetAllActivities(ctx context.Context, after time.Time, onProgress func(fetched int)) ([]strava.Activity, error)
}

// SyncService orchestrates syncing activities from Strava
type SyncService struct {
	client       ActivityFetcher
	store        *store.DB
	lookbackDays int
	log          log.FieldLogger
	now          func() time.Time
}

// NewSyncService creates a sync service. A first sync reaches back
// lookbackDays days.
func NewSyncService(client ActivityFetcher, db *store.DB, lookbackDays int, logger log.FieldLogger) *SyncService {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &SyncService{
		client:       client,
		store:        db,
		lookbackDays: lookbackDays,
		log:          logger.WithField("component", "sync"),
		now:          time.Now,
	}
}

// SyncProgress reports progress during sync
type SyncProgress struct {
	Phase   string // "activities", "storing"
	Fetched int
	Stored  int
}

// SyncResult contains the results of a sync operation
type SyncResult struct {
	After             time.Time
	ActivitiesFetched int
	ActivitiesStored  int
	Skipped           []load.SkippedRecord
}

// SyncAll fetches activities newer than the last sync and stores them.
// The progress channel, if given, is closed when SyncAll returns.
func (s *SyncService) SyncAll(ctx context.Context, progress chan<- SyncProgress) (*SyncResult, error) {
	if progress != nil {
		defer close(progress)
	}

	started := s.now()
	after, err := s.syncWindowStart(started)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{After: after}
	s.log.WithField("after", after.Format(time.RFC3339)).Info("fetching activities")

	send(progress, SyncProgress{Phase: "activities"})
	activities, err := s.client.GetAllActivities(ctx, after, func(n int) {
		send(progress, SyncProgress{Phase: "activities", Fetched: n})
	})
	result.ActivitiesFetched = len(activities)
	if err != nil {
		// keep what arrived before the failure
		if storeErr := s.storeActivities(activities, result, progress); storeErr != nil {
			s.log.WithError(storeErr).Warn("storing partial sync")
		}
		if errors.Is(err, strava.ErrRateLimited) {
			s.log.WithField("stored", result.ActivitiesStored).Warn("strava rate limit reached, retry later")
		}
		return result, fmt.Errorf("syncing activities: %w", err)
	}

	if err := s.storeActivities(activities, result, progress); err != nil {
		return result, err
	}

	if err := s.store.SetSyncTime(store.KeyLastStravaSync, started); err != nil {
		return result, fmt.Errorf("recording sync time: %w", err)
	}

	s.log.WithFields(log.Fields{
		"fetched": result.ActivitiesFetched,
		"stored":  result.ActivitiesStored,
		"skipped": len(result.Skipped),
	}).Info("sync complete")

	return result, nil
}

// syncOverlap reaches back before the last sync: Strava filters on start
// time, and an activity recorded before a sync may be uploaded after it.
const syncOverlap = 48 * time.Hour

// syncWindowStart returns the last sync minus syncOverlap, bounded below
// by the lookback cutoff
func (s *SyncService) syncWindowStart(now time.Time) (time.Time, error) {
	last, err := s.store.GetSyncTime(store.KeyLastStravaSync)
	if err != nil {
		return time.Time{}, fmt.Errorf("reading last sync: %w", err)
	}

	var cutoff time.Time
	if s.lookbackDays > 0 {
		cutoff = now.AddDate(0, 0, -s.lookbackDays)
	}
	if last.IsZero() {
		return cutoff, nil
	}
	if start := last.Add(-syncOverlap); start.After(cutoff) {
		return start, nil
	}
	return cutoff, nil
}

func (s *SyncService) storeActivities(activities []strava.Activity, result *SyncResult, progress chan<- SyncProgress) error {
	batch := make([]store.Activity, 0, len(activities))
	for _, a := range activities {
		rec := a.Record()
		if err := rec.Validate(); err != nil {
			s.log.WithField("activity", rec.ID).WithError(err).Warn("skipping activity")
			result.Skipped = append(result.Skipped, load.SkippedRecord{ID: rec.ID, Reason: err})
			continue
		}
		batch = append(batch, store.ActivityFromRecord(store.SourceStrava, a.Name, rec))
	}

	if len(batch) == 0 {
		return nil
	}
	if err := s.store.UpsertActivities(batch); err != nil {
		return fmt.Errorf("storing activities: %w", err)
	}
	result.ActivitiesStored += len(batch)
	send(progress, SyncProgress{Phase: "storing", Fetched: result.ActivitiesFetched, Stored: result.ActivitiesStored})
	return nil
}

// send delivers a progress update without blocking the sync
func send(progress chan<- SyncProgress, p SyncProgress) {
	if progress == nil {
		return
	}
	select {
	case progress <- p:
	default:
	}
}

// RateLimitStatus returns the remaining Strava requests in the short and
// daily windows. ok is false when the client does not track limits.
func (s *SyncService) RateLimitStatus() (short, daily int, ok bool) {
	rl, ok := s.client.(interface{ RateLimitStatus() (int, int) })
	if !ok {
		return 0, 0, false
	}
	short, daily = rl.RateLimitStatus()
	return short, daily, true
}
