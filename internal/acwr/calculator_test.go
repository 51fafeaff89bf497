package acwr

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loadwatch/internal/load"
)

var baseDate = time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

func day(i int) time.Time {
	return baseDate.AddDate(0, 0, i)
}

func constantSeries(days int, value float64) []load.DailyLoad {
	series := make([]load.DailyLoad, days)
	for i := range series {
		series[i] = load.DailyLoad{Date: day(i), Load: value}
	}
	return series
}

func TestWindow(t *testing.T) {
	w := NewWindow(3)
	assert.Equal(t, 0.0, w.Mean())

	w.Push(3)
	assert.Equal(t, 3.0, w.Mean())
	w.Push(6)
	assert.Equal(t, 4.5, w.Mean())
	w.Push(9)
	w.Push(12) // evicts 3
	assert.Equal(t, 3, w.Len())
	assert.Equal(t, 27.0, w.Sum())
	assert.Equal(t, []float64{6, 9, 12}, w.Values())
}

func TestWindowResetsResidue(t *testing.T) {
	w := NewWindow(2)
	w.Push(0.1)
	w.Push(0.2)
	w.Push(0)
	w.Push(0)
	assert.Equal(t, 0.0, w.Sum(), "an all-zero window must sum to exactly zero")
}

func TestRoundRatio(t *testing.T) {
	got := RoundRatio(10.004, 8.0)
	require.NotNil(t, got)
	assert.Equal(t, 1.25, *got)

	got = RoundRatio(2, 3)
	require.NotNil(t, got)
	assert.Equal(t, 0.67, *got)

	assert.Nil(t, RoundRatio(5, 0))
	assert.Nil(t, RoundRatio(0, 0))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		acwr float64
		want Status
	}{
		{0.5, StatusGreen},
		{1.0, StatusGreen},
		{1.1, StatusGreen},
		{1.11, StatusElevated},
		{1.25, StatusElevated},
		{1.3, StatusElevated},
		{1.31, StatusHigh},
		{2.0, StatusHigh},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.acwr), "Classify(%v)", tt.acwr)
		})
	}
}

func TestClassifyRoundedBoundary(t *testing.T) {
	// 13/10 lands on exactly 1.3 after rounding and must stay ELEVATED
	r := RoundRatio(13, 10)
	require.NotNil(t, r)
	assert.Equal(t, StatusElevated, Classify(*r))
}

func TestComputeEmpty(t *testing.T) {
	assert.Nil(t, Compute(nil))

	_, err := Latest(nil)
	assert.True(t, errors.Is(err, ErrInsufficientData))
}

func TestComputeFirstDay(t *testing.T) {
	rows := Compute([]load.DailyLoad{{Date: day(0), Load: 42}})
	require.Len(t, rows, 1)
	assert.Equal(t, 42.0, rows[0].Acute)
	assert.Equal(t, 42.0, rows[0].Chronic)
	require.NotNil(t, rows[0].ACWR)
	assert.Equal(t, 1.0, *rows[0].ACWR)
}

func TestComputeZeroChronic(t *testing.T) {
	rows := Compute([]load.DailyLoad{{Date: day(0), Load: 0}})
	require.Len(t, rows, 1)
	assert.Equal(t, 0.0, rows[0].Chronic)
	assert.Nil(t, rows[0].ACWR)

	_, ok := rows[0].Status()
	assert.False(t, ok)

	_, err := Latest(rows)
	assert.True(t, errors.Is(err, ErrInsufficientData))
}

func TestComputeFillsGaps(t *testing.T) {
	series := []load.DailyLoad{
		{Date: day(0), Load: 70},
		{Date: day(3), Load: 70},
	}
	rows := Compute(series)
	require.Len(t, rows, 4)

	for i, r := range rows {
		assert.Equal(t, day(i), r.Date)
	}
	assert.Equal(t, 0.0, rows[1].DailyLoad)

	// calendar window: 140 over 4 days, not 140 over 2 days with data
	assert.InDelta(t, 35.0, rows[3].Acute, 1e-9)
	assert.InDelta(t, 35.0, rows[3].Chronic, 1e-9)
}

func TestComputeWindowShrinkThenSlide(t *testing.T) {
	series := make([]load.DailyLoad, 10)
	for i := range series {
		series[i] = load.DailyLoad{Date: day(i), Load: float64(i + 1)}
	}
	rows := Compute(series)
	require.Len(t, rows, 10)

	// day 3: mean of 1..4
	assert.InDelta(t, 2.5, rows[3].Acute, 1e-9)
	// day 9: acute is mean of 4..10, chronic mean of 1..10
	assert.InDelta(t, 7.0, rows[9].Acute, 1e-9)
	assert.InDelta(t, 5.5, rows[9].Chronic, 1e-9)
	require.NotNil(t, rows[9].ACWR)
	assert.Equal(t, 1.27, *rows[9].ACWR)
}

func TestComputeAcuteBounds(t *testing.T) {
	loads := []float64{120, 0, 45, 300, 80, 0, 0, 210, 60, 95, 0, 150, 30, 0, 75}
	series := make([]load.DailyLoad, len(loads))
	for i, v := range loads {
		series[i] = load.DailyLoad{Date: day(i), Load: v}
	}

	rows := Compute(series)
	require.Len(t, rows, len(loads))

	for i, r := range rows {
		start := i - AcuteDays + 1
		if start < 0 {
			start = 0
		}
		window := loads[start : i+1]
		sum, lo, hi := 0.0, math.Inf(1), math.Inf(-1)
		for _, v := range window {
			sum += v
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		assert.InDelta(t, sum/float64(len(window)), r.Acute, 1e-9, "acute on day %d", i)
		assert.GreaterOrEqual(t, r.Acute, lo-1e-9)
		assert.LessOrEqual(t, r.Acute, hi+1e-9)
	}
}

func TestComputeIdempotent(t *testing.T) {
	series := []load.DailyLoad{
		{Date: day(4), Load: 50},
		{Date: day(0), Load: 100},
		{Date: day(9), Load: 75},
	}
	first := Compute(series)
	second := Compute(series)
	assert.Equal(t, first, second)

	// input order is left untouched
	assert.Equal(t, day(4), series[0].Date)
}

func TestComputeMergesDuplicateDates(t *testing.T) {
	rows := Compute([]load.DailyLoad{
		{Date: day(0), Load: 50},
		{Date: day(0), Load: 50},
	})
	require.Len(t, rows, 1)
	assert.Equal(t, 100.0, rows[0].DailyLoad)
}

func TestConstantLoadThirtyDays(t *testing.T) {
	rows := Compute(constantSeries(30, 100))
	require.Len(t, rows, 30)

	summary, err := Latest(rows)
	require.NoError(t, err)
	assert.Equal(t, day(29), summary.Date)
	assert.Equal(t, 100.0, summary.AcuteLoad)
	assert.Equal(t, 100.0, summary.ChronicLoad)
	require.NotNil(t, summary.ACWR)
	assert.Equal(t, 1.0, *summary.ACWR)
	assert.Equal(t, StatusGreen, summary.Status)
}

func TestSpikeIsHigh(t *testing.T) {
	series := constantSeries(28, 50)
	for i := 21; i < 28; i++ {
		series[i].Load = 150
	}
	summary, err := Latest(Compute(series))
	require.NoError(t, err)
	// acute 150, chronic (21*50+7*150)/28 = 75
	assert.Equal(t, 2.0, *summary.ACWR)
	assert.Equal(t, StatusHigh, summary.Status)
}

func TestTrackerOutOfOrder(t *testing.T) {
	tr := NewTracker()
	_, err := tr.Add(load.DailyLoad{Date: day(5), Load: 10})
	require.NoError(t, err)

	_, err = tr.Add(load.DailyLoad{Date: day(5), Load: 10})
	assert.True(t, errors.Is(err, ErrOutOfOrder))

	_, err = tr.Add(load.DailyLoad{Date: day(2), Load: 10})
	assert.True(t, errors.Is(err, ErrOutOfOrder))

	rows, err := tr.Add(load.DailyLoad{Date: day(7), Load: 10})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	last, ok := tr.Last()
	assert.True(t, ok)
	assert.Equal(t, day(7), last)
}

func TestTrackerMatchesCompute(t *testing.T) {
	series := []load.DailyLoad{
		{Date: day(0), Load: 100},
		{Date: day(2), Load: 60},
		{Date: day(10), Load: 200},
		{Date: day(40), Load: 90},
	}

	tr := NewTracker()
	var streamed []Row
	for _, dl := range series {
		rows, err := tr.Add(dl)
		require.NoError(t, err)
		streamed = append(streamed, rows...)
	}
	assert.Equal(t, Compute(series), streamed)
}

func TestLongGapYieldsInsufficientData(t *testing.T) {
	series := []load.DailyLoad{
		{Date: day(0), Load: 100},
		{Date: day(40), Load: 0},
	}
	s, err := Latest(Compute(series))
	assert.True(t, errors.Is(err, ErrInsufficientData))

	// the partial summary still names the latest day
	assert.Equal(t, day(40), s.Date)
	assert.Nil(t, s.ACWR)
	assert.Zero(t, s.ChronicLoad)
}

func TestTrend(t *testing.T) {
	rows := Compute([]load.DailyLoad{
		{Date: day(0), Load: 0},
		{Date: day(1), Load: 10},
		{Date: day(2), Load: 20},
		{Date: day(3), Load: 30},
	})

	trend := Trend(rows, 2)
	require.Len(t, trend, 2)
	assert.Equal(t, day(2), trend[0].Date)
	assert.Equal(t, day(3), trend[1].Date)

	// the zero-chronic first day is never part of the trend
	assert.Len(t, Trend(rows, 10), 3)
}

func TestSummaryJSON(t *testing.T) {
	ratio := 1.31
	s := Summary{
		Date:        day(0),
		ACWR:        &ratio,
		AcuteLoad:   131,
		ChronicLoad: 100,
		Status:      StatusHigh,
	}

	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2025-09-01","acwr":1.31,"acute_load":131,"chronic_load":100,"status":"HIGH"}`, string(b))

	var decoded Summary
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, s, decoded)
}

func TestSummaryJSONNullRatio(t *testing.T) {
	b, err := json.Marshal(Summary{Date: day(0), AcuteLoad: 10})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2025-09-01","acwr":null,"acute_load":10,"chronic_load":0}`, string(b))

	var decoded Summary
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.False(t, decoded.HasRatio())
}

func TestSummaryJSONDerivesStatus(t *testing.T) {
	var s Summary
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2025-09-01","acwr":1.2,"acute_load":12,"chronic_load":10}`), &s))
	assert.Equal(t, StatusElevated, s.Status)

	err := json.Unmarshal([]byte(`{"date":"yesterday","acwr":1.2}`), &s)
	assert.Error(t, err)
}

func TestStatusText(t *testing.T) {
	var s Status
	require.NoError(t, s.UnmarshalText([]byte("GREEN LIGHT")))
	assert.Equal(t, StatusGreen, s)
	require.NoError(t, s.UnmarshalText([]byte("elevated")))
	assert.Equal(t, StatusElevated, s)
	require.NoError(t, s.UnmarshalText([]byte("HIGH RISK (Groin Guard Active)")))
	assert.Equal(t, StatusHigh, s)
	assert.Error(t, s.UnmarshalText([]byte("purple")))

	assert.Equal(t, "HIGH RISK (Groin Guard Active)", StatusHigh.Label())
}
