// Package load turns heterogeneous activity records into a daily load series.
package load

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Source identifies where a record's load value came from
type Source int

const (
	SourceMissing Source = iota // chosen metric absent, contributes 0
	SourceTSS                   // provider training-stress-score
	SourceHRProxy               // duration (min) * average HR
)

// String returns the report name of the source
func (s Source) String() string {
	switch s {
	case SourceTSS:
		return "tss"
	case SourceHRProxy:
		return "hr_proxy"
	default:
		return "missing"
	}
}

// Description returns a human-readable load source label
func (s Source) Description() string {
	switch s {
	case SourceTSS:
		return "Provider TSS"
	case SourceHRProxy:
		return "Calculated TRIMP proxy"
	default:
		return "No load metric"
	}
}

// Mode decides how the load metric is chosen
type Mode string

const (
	// ModeBatch picks one metric for the whole batch: TSS if any record has
	// one, otherwise the HR proxy.
	ModeBatch Mode = "batch"
	// ModePerRecord picks the metric for each record independently.
	ModePerRecord Mode = "per_record"
)

// ParseMode parses a mode name. An empty string yields ModeBatch.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeBatch:
		return ModeBatch, nil
	case ModePerRecord:
		return ModePerRecord, nil
	}
	return "", fmt.Errorf("unknown load mode %q (want %q or %q)", s, ModeBatch, ModePerRecord)
}

// DailyLoad is the summed load of one calendar day
type DailyLoad struct {
	Date       time.Time
	Load       float64
	Activities int
	Sources    []Source // distinct sources that contributed, ascending
}

// SkippedRecord is a record excluded from the series and why
type SkippedRecord struct {
	ID     string
	Reason error
}

// Result is the output of Normalize
type Result struct {
	Series  []DailyLoad
	Skipped []SkippedRecord
	Mode    Mode
	// Metric is the batch-wide metric in ModeBatch. In ModePerRecord it is
	// SourceMissing; consult DailyLoad.Sources instead.
	Metric Source
}

// Mixed reports whether more than one load source contributed to the series
func (r Result) Mixed() bool {
	seen := make(map[Source]bool)
	for _, dl := range r.Series {
		for _, s := range dl.Sources {
			if s != SourceMissing {
				seen[s] = true
			}
		}
	}
	return len(seen) > 1
}

// SourceLabel describes the load metric behind the series. In
// ModePerRecord it lists every source that contributed.
func (r Result) SourceLabel() string {
	if r.Mode != ModePerRecord {
		return r.Metric.Description()
	}

	var seen []Source
	for _, dl := range r.Series {
		for _, s := range dl.Sources {
			if s != SourceMissing {
				seen = addSource(seen, s)
			}
		}
	}
	if len(seen) == 0 {
		return SourceMissing.Description()
	}

	names := make([]string, len(seen))
	for i, s := range seen {
		names[i] = s.Description()
	}
	return "Per activity: " + strings.Join(names, " + ")
}

// Normalize maps each valid record to a load value and sums them per
// calendar day. Malformed records are skipped, never fatal.
func Normalize(records []ActivityRecord, mode Mode) Result {
	if mode == "" {
		mode = ModeBatch
	}
	result := Result{Mode: mode}

	valid := make([]ActivityRecord, 0, len(records))
	for _, r := range records {
		if err := r.Validate(); err != nil {
			result.Skipped = append(result.Skipped, SkippedRecord{ID: r.ID, Reason: err})
			continue
		}
		valid = append(valid, r)
	}

	if mode == ModeBatch {
		result.Metric = batchMetric(valid)
	}

	byDate := make(map[time.Time]*DailyLoad)
	for _, r := range valid {
		value, src := recordLoad(r, mode, result.Metric)

		key := r.Date()
		dl, ok := byDate[key]
		if !ok {
			dl = &DailyLoad{Date: key}
			byDate[key] = dl
		}
		dl.Load += value
		dl.Activities++
		dl.Sources = addSource(dl.Sources, src)
	}

	result.Series = make([]DailyLoad, 0, len(byDate))
	for _, dl := range byDate {
		result.Series = append(result.Series, *dl)
	}
	sort.Slice(result.Series, func(i, j int) bool {
		return result.Series[i].Date.Before(result.Series[j].Date)
	})

	return result
}

// batchMetric decides the single metric used for a whole batch
func batchMetric(records []ActivityRecord) Source {
	for _, r := range records {
		if r.HasTSS() {
			return SourceTSS
		}
	}
	return SourceHRProxy
}

func recordLoad(r ActivityRecord, mode Mode, metric Source) (float64, Source) {
	if mode == ModeBatch {
		switch metric {
		case SourceTSS:
			if r.HasTSS() {
				return nonNegative(*r.TrainingStressScore), SourceTSS
			}
		case SourceHRProxy:
			if r.HasHR() {
				return nonNegative(r.HRProxy()), SourceHRProxy
			}
		}
		return 0, SourceMissing
	}

	switch {
	case r.HasTSS():
		return nonNegative(*r.TrainingStressScore), SourceTSS
	case r.HasHR():
		return nonNegative(r.HRProxy()), SourceHRProxy
	}
	return 0, SourceMissing
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func addSource(sources []Source, s Source) []Source {
	for _, existing := range sources {
		if existing == s {
			return sources
		}
	}
	sources = append(sources, s)
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })
	return sources
}
