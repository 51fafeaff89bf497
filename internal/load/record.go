package load

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ActivityRecord is a single externally sourced activity
type ActivityRecord struct {
	ID                  string
	StartTime           time.Time // local wall clock as reported by the source
	DurationSeconds     float64
	AverageHR           *float64 // bpm, nullable
	TrainingStressScore *float64 // provider load unit, nullable
}

// ErrMalformedRecord is returned when a record lacks a start time or duration
var ErrMalformedRecord = errors.New("malformed activity record")

// Validate checks the fields the load computation cannot do without
func (r ActivityRecord) Validate() error {
	if r.StartTime.IsZero() {
		return fmt.Errorf("%w: missing start time", ErrMalformedRecord)
	}
	if math.IsNaN(r.DurationSeconds) || math.IsInf(r.DurationSeconds, 0) || r.DurationSeconds < 0 {
		return fmt.Errorf("%w: invalid duration %v", ErrMalformedRecord, r.DurationSeconds)
	}
	return nil
}

// Date returns the calendar day of the local start time, without any
// timezone conversion.
func (r ActivityRecord) Date() time.Time {
	return DateOf(r.StartTime)
}

// DateOf truncates t to its wall-clock calendar day, expressed in UTC
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// HasTSS reports whether the record carries a usable training-stress-score
func (r ActivityRecord) HasTSS() bool {
	return r.TrainingStressScore != nil && !math.IsNaN(*r.TrainingStressScore)
}

// HasHR reports whether the record carries a usable average heart rate
func (r ActivityRecord) HasHR() bool {
	return r.AverageHR != nil && !math.IsNaN(*r.AverageHR) && *r.AverageHR > 0
}

// HRProxy is the heart-rate based load: duration in minutes times average HR.
// Returns 0 when no average HR is available.
func (r ActivityRecord) HRProxy() float64 {
	if !r.HasHR() {
		return 0
	}
	return (r.DurationSeconds / 60) * *r.AverageHR
}
