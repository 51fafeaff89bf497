// Package garmin decodes Garmin Connect activity exports into load records.
package garmin

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"loadwatch/internal/load"
)

// Activity is the subset of a Garmin Connect activity the load model reads
type Activity struct {
	ActivityID          json.Number `json:"activityId"`
	ActivityName        string      `json:"activityName"`
	StartTimeLocal      string      `json:"startTimeLocal"`
	Duration            *float64    `json:"duration"` // seconds
	AverageHR           *float64    `json:"averageHR"`
	TrainingStressScore *float64    `json:"trainingStressScore"`
}

// Garmin reports local start times without an offset
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseLocalTime parses a wall-clock timestamp. An explicit offset, when
// present, is kept rather than converted.
func ParseLocalTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Record converts the activity into a load record
func (a Activity) Record() (load.ActivityRecord, error) {
	id := a.ActivityID.String()
	if a.StartTimeLocal == "" {
		return load.ActivityRecord{}, fmt.Errorf("%w: activity %s has no startTimeLocal", load.ErrMalformedRecord, id)
	}
	start, err := ParseLocalTime(a.StartTimeLocal)
	if err != nil {
		return load.ActivityRecord{}, fmt.Errorf("%w: activity %s: %v", load.ErrMalformedRecord, id, err)
	}
	if a.Duration == nil {
		return load.ActivityRecord{}, fmt.Errorf("%w: activity %s has no duration", load.ErrMalformedRecord, id)
	}

	return load.ActivityRecord{
		ID:                  "garmin:" + id,
		StartTime:           start,
		DurationSeconds:     *a.Duration,
		AverageHR:           a.AverageHR,
		TrainingStressScore: a.TrainingStressScore,
	}, nil
}

// Decode reads a JSON array of activities. Entries that cannot be turned
// into records are returned as errors alongside the good records.
func Decode(r io.Reader) ([]load.ActivityRecord, []error, error) {
	var raw []json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, nil, fmt.Errorf("decoding activity export: %w", err)
	}

	records := make([]load.ActivityRecord, 0, len(raw))
	var skipped []error
	for i, msg := range raw {
		var a Activity
		if err := json.Unmarshal(msg, &a); err != nil {
			skipped = append(skipped, fmt.Errorf("%w: entry %d: %v", load.ErrMalformedRecord, i, err))
			continue
		}
		if a.ActivityID == "" {
			a.ActivityID = json.Number(strconv.Itoa(i))
		}
		rec, err := a.Record()
		if err != nil {
			skipped = append(skipped, err)
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}

// ErrNoExport is returned when the export file does not exist
var ErrNoExport = errors.New("activity export not found")

// ReadFile decodes an export file from disk
func ReadFile(path string) ([]load.ActivityRecord, []error, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoExport, path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("opening activity export: %w", err)
	}
	defer f.Close()

	return Decode(f)
}
