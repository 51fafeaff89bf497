package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"loadwatch/internal/acwr"
)

// Palette
var (
	primaryColor = lipgloss.Color("#7C3AED")
	greenColor   = lipgloss.Color("#10B981")
	amberColor   = lipgloss.Color("#F59E0B")
	redColor     = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280")
	textColor    = lipgloss.Color("#F9FAFB")
)

var (
	bold   = lipgloss.NewStyle().Bold(true)
	accent = bold.Foreground(primaryColor)

	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	errorStyle   = lipgloss.NewStyle().Foreground(redColor)
	successStyle = lipgloss.NewStyle().Foreground(greenColor)
	warningStyle = lipgloss.NewStyle().Foreground(amberColor)
	statusStyle  = mutedStyle.MarginTop(1)

	headerStyle = bold.Foreground(textColor).Background(primaryColor).Padding(0, 1).MarginBottom(1)

	navStyle         = mutedStyle.MarginBottom(1)
	navActiveStyle   = accent
	navInactiveStyle = mutedStyle

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(1, 2)
	cardTitleStyle = accent.MarginBottom(1)

	metricLabelStyle = mutedStyle.Width(20)
	metricValueStyle = bold.Foreground(textColor)

	tableHeaderStyle = accent.
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(mutedColor).
				Padding(0, 1)
	tableSelectedStyle = bold.Foreground(textColor).Background(primaryColor)

	helpKeyStyle     = accent
	helpSectionStyle = bold.Foreground(greenColor)
)

// riskColor maps a risk band to its traffic-light colour
func riskColor(s acwr.Status) lipgloss.Color {
	switch s {
	case acwr.StatusHigh:
		return redColor
	case acwr.StatusElevated:
		return amberColor
	default:
		return greenColor
	}
}

func riskStyle(s acwr.Status) lipgloss.Style {
	return bold.Foreground(riskColor(s))
}

// RenderMetric renders a metric with label and value
func RenderMetric(label, value string) string {
	return metricLabelStyle.Render(label) + metricValueStyle.Render(value)
}

// RenderProgressBar renders an ASCII progress bar
func RenderProgressBar(percent float64, width int) string {
	filled := min(max(int(percent*float64(width)), 0), width)
	return successStyle.Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", width-filled))
}
