// Package acwr computes trailing acute and chronic workload averages, the
// Acute:Chronic Workload Ratio and the resulting risk band.
package acwr

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"loadwatch/internal/load"
)

const (
	AcuteDays   = 7
	ChronicDays = 28
)

// ErrInsufficientData is returned when no ratio can be computed: the series
// is empty or the chronic average of the latest day is zero.
var ErrInsufficientData = errors.New("insufficient data")

// ErrOutOfOrder is returned when a Tracker receives a date at or before the
// last one it processed.
var ErrOutOfOrder = errors.New("daily load out of order")

// Row holds the rolling statistics for one calendar day
type Row struct {
	Date      time.Time
	DailyLoad float64
	Acute     float64
	Chronic   float64
	ACWR      *float64 // nil when Chronic is zero
}

// Status returns the risk band of the row. ok is false when the ratio is
// undefined.
func (r Row) Status() (status Status, ok bool) {
	if r.ACWR == nil {
		return StatusGreen, false
	}
	return Classify(*r.ACWR), true
}

// RoundRatio returns acute/chronic rounded to two decimals, or nil when
// chronic is zero.
func RoundRatio(acute, chronic float64) *float64 {
	if chronic == 0 {
		return nil
	}
	v := math.Round(acute/chronic*100) / 100
	return &v
}

// Tracker maintains the acute and chronic windows incrementally over a
// stream of calendar days.
type Tracker struct {
	acute   *Window
	chronic *Window
	last    time.Time
	started bool
}

// NewTracker creates a tracker with the standard 7 and 28 day windows
func NewTracker() *Tracker {
	return &Tracker{
		acute:   NewWindow(AcuteDays),
		chronic: NewWindow(ChronicDays),
	}
}

// Add feeds one day of load. Calendar days skipped since the previous call
// are filled with zero load. It returns a row for every day processed,
// ending with dl.Date.
func (t *Tracker) Add(dl load.DailyLoad) ([]Row, error) {
	date := load.DateOf(dl.Date)
	if t.started && !date.After(t.last) {
		return nil, fmt.Errorf("%w: %s after %s", ErrOutOfOrder,
			date.Format(time.DateOnly), t.last.Format(time.DateOnly))
	}

	var rows []Row
	if t.started {
		for d := t.last.AddDate(0, 0, 1); d.Before(date); d = d.AddDate(0, 0, 1) {
			rows = append(rows, t.push(d, 0))
		}
	}
	rows = append(rows, t.push(date, dl.Load))

	t.last = date
	t.started = true
	return rows, nil
}

// Last returns the most recent date processed
func (t *Tracker) Last() (time.Time, bool) {
	return t.last, t.started
}

func (t *Tracker) push(date time.Time, value float64) Row {
	t.acute.Push(value)
	t.chronic.Push(value)

	acute := t.acute.Mean()
	chronic := t.chronic.Mean()
	return Row{
		Date:      date,
		DailyLoad: value,
		Acute:     acute,
		Chronic:   chronic,
		ACWR:      RoundRatio(acute, chronic),
	}
}

// Compute returns one row per calendar day from the first to the last date
// of the series. The input is not modified; duplicate dates are summed.
func Compute(series []load.DailyLoad) []Row {
	if len(series) == 0 {
		return nil
	}

	merged := make(map[time.Time]float64, len(series))
	for _, dl := range series {
		merged[load.DateOf(dl.Date)] += dl.Load
	}
	dates := make([]time.Time, 0, len(merged))
	for d := range merged {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	tracker := NewTracker()
	rows := make([]Row, 0, len(dates))
	for _, d := range dates {
		// dates are strictly increasing, Add cannot fail
		dayRows, _ := tracker.Add(load.DailyLoad{Date: d, Load: merged[d]})
		rows = append(rows, dayRows...)
	}
	return rows
}

// Latest returns the summary for the most recent row. When that row has no
// ratio the summary still carries its date and loads, with a nil ACWR.
func Latest(rows []Row) (Summary, error) {
	if len(rows) == 0 {
		return Summary{}, ErrInsufficientData
	}
	last := rows[len(rows)-1]
	if last.Chronic == 0 || last.ACWR == nil {
		return Summary{Date: last.Date, AcuteLoad: last.Acute, ChronicLoad: last.Chronic}, ErrInsufficientData
	}
	return Summary{
		Date:        last.Date,
		ACWR:        last.ACWR,
		AcuteLoad:   last.Acute,
		ChronicLoad: last.Chronic,
		Status:      Classify(*last.ACWR),
	}, nil
}

// Trend returns up to the last n rows that have a defined ratio, oldest first
func Trend(rows []Row, n int) []Row {
	var out []Row
	for i := len(rows) - 1; i >= 0 && len(out) < n; i-- {
		if rows[i].ACWR != nil {
			out = append(out, rows[i])
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
