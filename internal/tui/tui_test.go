package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"loadwatch/internal/acwr"
	"loadwatch/internal/load"
	"loadwatch/internal/service"
	"loadwatch/internal/store"
)

var viewNow = time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)

func ratio(v float64) *float64 {
	return &v
}

func loadedDashboard(data *service.DashboardData) DashboardModel {
	m := NewDashboardModel(nil)
	m.now = func() time.Time { return viewNow }
	updated, _ := m.Update(dashboardDataMsg{data: data})
	return updated.(DashboardModel)
}

func TestDashboardViewHighRisk(t *testing.T) {
	history := make([]float64, 10)
	dates := make([]time.Time, 10)
	for i := range history {
		history[i] = 1.0 + float64(i)*0.05
		dates[i] = time.Date(2025, 9, 21+i, 0, 0, 0, 0, time.UTC)
	}

	m := loadedDashboard(&service.DashboardData{
		Latest: &acwr.Summary{
			Date:        time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC),
			ACWR:        ratio(1.45),
			AcuteLoad:   145,
			ChronicLoad: 100,
			Status:      acwr.StatusHigh,
		},
		ACWRHistory:   history,
		ACWRDates:     dates,
		ActivityCount: 1234,
		LastSync:      viewNow.Add(-48 * time.Hour),
	})

	view := m.View()
	assert.Contains(t, view, "HIGH RISK (Groin Guard Active)")
	assert.Contains(t, view, "1.45")
	assert.Contains(t, view, "1,234")
	assert.Contains(t, view, "2 days ago")
	assert.Contains(t, view, "never") // no analysis time recorded
	assert.Contains(t, view, "ACWR Trend (Sep 21 - Sep 30)")
}

func TestDashboardViewStates(t *testing.T) {
	tests := []struct {
		name string
		msg  dashboardDataMsg
		want string
	}{
		{"no activities", dashboardDataMsg{data: &service.DashboardData{}}, "No activities yet"},
		{"no ratio", dashboardDataMsg{data: &service.DashboardData{ActivityCount: 3}}, "Not enough history"},
		{"error", dashboardDataMsg{err: errors.New("disk I/O error")}, "disk I/O error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewDashboardModel(nil)
			assert.Contains(t, m.View(), "Loading")

			updated, _ := m.Update(tt.msg)
			assert.Contains(t, updated.View(), tt.want)
		})
	}
}

func TestSyncViewSummary(t *testing.T) {
	m := NewSyncModel(nil, nil)
	assert.Contains(t, m.View(), "only the analysis will run")

	updated, cmd := m.Update(SyncDoneMsg{
		Analysis: &service.AnalysisResult{
			Summary: acwr.Summary{ACWR: ratio(1.2), Status: acwr.StatusElevated},
			Load:    load.Result{Mode: load.ModeBatch, Metric: load.SourceHRProxy},
		},
	})
	assert.NotNil(t, cmd)
	assert.IsType(t, SyncCompleteMsg{}, cmd())

	view := updated.View()
	assert.Contains(t, view, "ACWR 1.20")
	assert.Contains(t, view, "ELEVATED RISK")
	assert.Contains(t, view, "Calculated TRIMP proxy")
}

func TestSyncViewInsufficient(t *testing.T) {
	m := NewSyncModel(nil, nil)
	updated, _ := m.Update(SyncDoneMsg{AnalysisErr: acwr.ErrInsufficientData})
	assert.Contains(t, updated.View(), "Not enough training history")
}

func TestActivitiesView(t *testing.T) {
	m := NewActivitiesModel(nil)
	updated, _ := m.Update(activitiesLoadedMsg{
		activities: []service.ActivityLoad{
			{
				Activity: store.Activity{
					ID:              "strava:1",
					Source:          store.SourceStrava,
					Name:            "A very long morning run name that overflows",
					StartTimeLocal:  time.Date(2025, 9, 2, 7, 0, 0, 0, time.UTC),
					DurationSeconds: 3900,
					AverageHR:       ratio(150),
				},
				HRLoad: ratio(9750),
				Source: load.SourceHRProxy,
			},
		},
		total: 1,
	})

	view := updated.View()
	assert.Contains(t, view, "Recent Activities (1 of 1)")
	assert.Contains(t, view, "1h 5m")
	assert.Contains(t, view, "9750")
	assert.Contains(t, view, "A very long morning r...")
	assert.Contains(t, view, "strava")

	resized := updated.(ActivitiesModel).Resize(40)
	assert.Equal(t, 40-chromeHeight-2, resized.table.Height())
}

func TestActivitiesViewEmpty(t *testing.T) {
	m := NewActivitiesModel(nil)
	assert.Contains(t, m.View(), "Loading activities")

	updated, _ := m.Update(activitiesLoadedMsg{})
	assert.Contains(t, updated.View(), "No activities found")

	updated, _ = m.Update(activitiesLoadedMsg{err: errors.New("no such table")})
	assert.Contains(t, updated.View(), "no such table")
}

func TestAppNavigation(t *testing.T) {
	app := NewApp(nil, nil, nil)
	assert.Contains(t, app.View(), "Strava not configured")

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	assert.Equal(t, ScreenHelp, app.screen)
	assert.Contains(t, app.View(), "Metrics Explained")

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ScreenDashboard, app.screen)

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("3")})
	assert.Equal(t, ScreenSync, app.screen)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.NotNil(t, cmd)
}

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		percent float64
		full    int
	}{
		{0, 0},
		{0.5, 5},
		{1.5, 10},
		{-1, 0},
	}

	for _, tt := range tests {
		bar := RenderProgressBar(tt.percent, 10)
		assert.Equal(t, tt.full, strings.Count(bar, "█"))
		assert.Equal(t, 10-tt.full, strings.Count(bar, "░"))
	}
}
