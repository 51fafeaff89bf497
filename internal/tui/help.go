package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"loadwatch/internal/acwr"
)

// reserved rows for the header, tabs and footer
const chromeHeight = 8

// HelpModel is the help screen model
type HelpModel struct {
	viewport viewport.Model
}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	vp := viewport.New(80, 20)
	vp.SetContent(renderHelpContent(80))
	return HelpModel{viewport: vp}
}

// Resize fits the scrollable area to the terminal
func (m HelpModel) Resize(width, height int) HelpModel {
	m.viewport.Width = width
	m.viewport.Height = max(height-chromeHeight, 5)
	m.viewport.SetContent(renderHelpContent(width))
	return m
}

// Init initializes the help screen
func (m HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles scrolling
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the help screen
func (m HelpModel) View() string {
	return m.viewport.View()
}

var metricHelp = []struct {
	name string
	desc string
}{
	{"Daily Load", "Provider TSS when available, otherwise duration (min) x average HR."},
	{"Acute Load", fmt.Sprintf("Mean daily load over the last %d days.", acwr.AcuteDays)},
	{"Chronic Load", fmt.Sprintf("Mean daily load over the last %d days.", acwr.ChronicDays)},
	{"ACWR", "Acute / chronic. Rest days count as zero load."},
	{"Risk", fmt.Sprintf("> %.1f high, > %.1f elevated, otherwise green.", acwr.HighThreshold, acwr.ElevatedThreshold)},
}

func renderHelpContent(width int) string {
	h := help.New()
	h.Width = width

	var b strings.Builder
	b.WriteString(cardTitleStyle.Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(h.FullHelpView(keys.FullHelp()))
	b.WriteString("\n\n")

	b.WriteString(helpSectionStyle.Render("Metrics Explained"))
	b.WriteString("\n\n")
	for _, metric := range metricHelp {
		fmt.Fprintf(&b, "  %s\n  %s\n\n", helpKeyStyle.Render(metric.name), mutedStyle.Render(metric.desc))
	}

	return b.String()
}
