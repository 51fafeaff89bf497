package service

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"loadwatch/internal/garmin"
	"loadwatch/internal/load"
	"loadwatch/internal/store"
)

// ImportResult summarises a Garmin export import
type ImportResult struct {
	Imported int
	Skipped  []load.SkippedRecord
}

// ImportGarmin reads a Garmin activity export and stores its activities.
// Entries that cannot be decoded or validated are skipped and reported.
func ImportGarmin(db *store.DB, path string, logger log.FieldLogger) (*ImportResult, error) {
	if logger == nil {
		logger = log.StandardLogger()
	}
	logger = logger.WithFields(log.Fields{"component": "import", "file": path})

	records, decodeErrs, err := garmin.ReadFile(path)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for _, e := range decodeErrs {
		logger.WithError(e).Warn("skipping export entry")
		result.Skipped = append(result.Skipped, load.SkippedRecord{Reason: e})
	}

	batch := make([]store.Activity, 0, len(records))
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			logger.WithField("activity", rec.ID).WithError(err).Warn("skipping activity")
			result.Skipped = append(result.Skipped, load.SkippedRecord{ID: rec.ID, Reason: err})
			continue
		}
		batch = append(batch, store.ActivityFromRecord(store.SourceGarmin, "", rec))
	}

	if len(batch) > 0 {
		if err := db.UpsertActivities(batch); err != nil {
			return result, fmt.Errorf("storing activities: %w", err)
		}
	}
	result.Imported = len(batch)

	if err := db.SetSyncTime(store.KeyLastImport, time.Now()); err != nil {
		return result, fmt.Errorf("recording import time: %w", err)
	}

	logger.WithFields(log.Fields{"imported": result.Imported, "skipped": len(result.Skipped)}).Info("import complete")
	return result, nil
}
