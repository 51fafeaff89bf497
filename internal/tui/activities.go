package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"loadwatch/internal/service"
)

// activityLimit caps how many recent activities the list loads
const activityLimit = 200

var activityColumns = []table.Column{
	{Title: "Date", Width: 10},
	{Title: "Name", Width: 24},
	{Title: "From", Width: 6},
	{Title: "Duration", Width: 8},
	{Title: "Avg HR", Width: 6},
	{Title: "TSS", Width: 6},
	{Title: "HR Load", Width: 8},
}

// ActivitiesModel lists recent activities with the load each metric gives them
type ActivitiesModel struct {
	queryService *service.QueryService
	table        table.Model
	total        int
	loading      bool
	err          error
}

// NewActivitiesModel creates a new activities model
func NewActivitiesModel(qs *service.QueryService) ActivitiesModel {
	t := table.New(
		table.WithColumns(activityColumns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = tableHeaderStyle
	s.Selected = tableSelectedStyle
	t.SetStyles(s)

	return ActivitiesModel{
		queryService: qs,
		table:        t,
		loading:      true,
	}
}

// Resize fits the table to the terminal height
func (m ActivitiesModel) Resize(height int) ActivitiesModel {
	m.table.SetHeight(max(height-chromeHeight-2, 5))
	return m
}

// Init loads the list
func (m ActivitiesModel) Init() tea.Cmd {
	return m.load
}

type activitiesLoadedMsg struct {
	activities []service.ActivityLoad
	total      int
	err        error
}

func (m ActivitiesModel) load() tea.Msg {
	activities, err := m.queryService.GetActivitiesList(activityLimit, 0)
	if err != nil {
		return activitiesLoadedMsg{err: err}
	}

	total, err := m.queryService.GetTotalActivityCount()
	if err != nil {
		return activitiesLoadedMsg{err: err}
	}

	return activitiesLoadedMsg{activities: activities, total: total}
}

// Update handles messages
func (m ActivitiesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case activitiesLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.total = msg.total
		m.table.SetRows(activityRows(msg.activities))
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Refresh) {
			m.loading = true
			return m, m.load
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func activityRows(activities []service.ActivityLoad) []table.Row {
	rows := make([]table.Row, len(activities))
	for i, al := range activities {
		a := al.Activity

		name := a.Name
		if name == "" {
			name = a.ID
		}

		rows[i] = table.Row{
			a.StartTimeLocal.Format("Jan 02"),
			truncateName(name, 24),
			a.Source,
			formatDuration(int(a.DurationSeconds)),
			formatOptional(a.AverageHR),
			formatOptional(al.TSS),
			formatOptional(al.HRLoad),
		}
	}
	return rows
}

// View renders the activities list
func (m ActivitiesModel) View() string {
	if m.loading {
		return "\n  Loading activities..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	n := len(m.table.Rows())
	if n == 0 {
		return "\n  No activities found. Press 's' to sync with Strava."
	}

	title := cardTitleStyle.Render(fmt.Sprintf("Recent Activities (%d of %d)", n, m.total))
	hint := statusStyle.Render("  j/k: navigate  pgup/pgdn: page  r: refresh")

	return lipgloss.JoinVertical(lipgloss.Left, title, m.table.View(), hint)
}

func formatOptional(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f", *v)
}

func formatDuration(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// truncateName shortens s to n runes, marking the cut with an ellipsis
func truncateName(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
