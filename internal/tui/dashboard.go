package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"

	"loadwatch/internal/acwr"
	"loadwatch/internal/service"
)

// gaugeMax is the ratio at which the gauge is full
const gaugeMax = 2.0

// DashboardModel shows the latest risk band, the load behind it and the
// ratio's recent trend
type DashboardModel struct {
	queryService *service.QueryService
	data         *service.DashboardData
	loading      bool
	err          error
	now          func() time.Time
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(qs *service.QueryService) DashboardModel {
	return DashboardModel{
		queryService: qs,
		loading:      true,
		now:          time.Now,
	}
}

type dashboardDataMsg struct {
	data *service.DashboardData
	err  error
}

// Init starts the first load
func (m DashboardModel) Init() tea.Cmd {
	return m.fetch
}

func (m DashboardModel) fetch() tea.Msg {
	data, err := m.queryService.GetDashboardData()
	return dashboardDataMsg{data: data, err: err}
}

// Update handles messages
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.data, m.err, m.loading = msg.data, msg.err, false
	case tea.KeyMsg:
		if key.Matches(msg, keys.Refresh) {
			m.loading = true
			return m, m.fetch
		}
	}
	return m, nil
}

// View renders the dashboard
func (m DashboardModel) View() string {
	if m.loading {
		return "\n  Loading dashboard..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if m.data == nil || m.data.ActivityCount == 0 {
		return "\n  No activities yet. Press 's' to sync with Strava or run 'loadwatch import <file>'."
	}

	cards := lipgloss.JoinHorizontal(lipgloss.Top, m.renderRiskCard(), "  ", m.renderDataCard())
	hint := statusStyle.Render("Press 'r' to refresh, 's' to sync and analyze, '2' for activities")

	// a trend needs a few points before the plot means anything
	if len(m.data.ACWRHistory) <= 2 {
		return lipgloss.JoinVertical(lipgloss.Left, cards, hint)
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards, m.renderChart(), hint)
}

func (m DashboardModel) renderRiskCard() string {
	title := cardTitleStyle.Render("Injury Risk")

	s := m.data.Latest
	if s == nil {
		body := mutedStyle.Render("Not enough history for a ratio yet.\nPress 's' to sync and analyze.")
		return cardStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left, title, body))
	}

	lines := []string{
		riskStyle(s.Status).Render(s.Status.Label()),
		"",
		RenderMetric("ACWR", fmt.Sprintf("%.2f", *s.ACWR)),
		RenderProgressBar(*s.ACWR/gaugeMax, 30),
		"",
		RenderMetric("Acute Load (7d)", fmt.Sprintf("%.0f", s.AcuteLoad)),
		RenderMetric("Chronic Load (28d)", fmt.Sprintf("%.0f", s.ChronicLoad)),
		"",
		mutedStyle.Render("As of " + s.Date.Format("Mon Jan 02")),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(40).BorderForeground(riskColor(s.Status)).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderDataCard() string {
	title := cardTitleStyle.Render("Data")

	lines := []string{
		RenderMetric("Activities", humanize.Comma(int64(m.data.ActivityCount))),
		RenderMetric("Last sync", m.ago(m.data.LastSync)),
		RenderMetric("Last analysis", m.ago(m.data.LastAnalysis)),
		"",
		mutedStyle.Render(fmt.Sprintf("> %.1f high, > %.1f elevated", acwr.HighThreshold, acwr.ElevatedThreshold)),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(36).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) ago(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.RelTime(t, m.now(), "ago", "from now")
}

func (m DashboardModel) renderChart() string {
	first := m.data.ACWRDates[0].Format("Jan 02")
	last := m.data.ACWRDates[len(m.data.ACWRDates)-1].Format("Jan 02")
	title := cardTitleStyle.Render(fmt.Sprintf("ACWR Trend (%s - %s)", first, last))

	graph := asciigraph.Plot(m.data.ACWRHistory,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Precision(2),
	)

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph))
}
