// Package tui implements the terminal dashboard.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"loadwatch/internal/service"
)

// Screen identifiers
type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenActivities
	ScreenSync
	ScreenHelp
)

// tabs lists the navigable screens in display order
var tabs = []struct {
	screen  Screen
	binding key.Binding
}{
	{ScreenDashboard, keys.Dashboard},
	{ScreenActivities, keys.Activities},
	{ScreenSync, keys.Sync},
	{ScreenHelp, keys.Help},
}

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	dashboard  DashboardModel
	activities ActivitiesModel
	syncScreen SyncModel
	helpScreen HelpModel
	footerHelp help.Model

	queryService *service.QueryService

	width  int
	height int
	status string
}

// NewApp creates a new App. syncService may be nil when Strava is not
// configured.
func NewApp(queryService *service.QueryService, syncService *service.SyncService, analysisService *service.AnalysisService) *App {
	a := &App{
		screen:       ScreenDashboard,
		queryService: queryService,
		dashboard:    NewDashboardModel(queryService),
		activities:   NewActivitiesModel(queryService),
		syncScreen:   NewSyncModel(syncService, analysisService),
		helpScreen:   NewHelpModel(),
		footerHelp:   help.New(),
	}
	if syncService == nil {
		a.status = "Strava not configured: use 'loadwatch import <file>' to load activities"
	}
	return a
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	return a.dashboard.Init()
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// navigation is locked while a sync runs
		if !a.syncScreen.syncing {
			if cmd, ok := a.navigate(msg); ok {
				return a, cmd
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.footerHelp.Width = msg.Width
		a.helpScreen = a.helpScreen.Resize(msg.Width, msg.Height)
		a.activities = a.activities.Resize(msg.Height)
		return a, nil

	case SyncCompleteMsg:
		a.dashboard = NewDashboardModel(a.queryService)
		return a, a.dashboard.Init()

	case dashboardDataMsg:
		m, cmd := a.dashboard.Update(msg)
		a.dashboard = m.(DashboardModel)
		return a, cmd
	}

	return a, a.updateScreen(msg)
}

// navigate handles the global keys. ok is false when the key belongs to
// the current screen.
func (a *App) navigate(msg tea.KeyMsg) (cmd tea.Cmd, ok bool) {
	switch {
	case key.Matches(msg, keys.Quit):
		return tea.Quit, true
	case key.Matches(msg, keys.Dashboard):
		a.screen = ScreenDashboard
		a.dashboard = NewDashboardModel(a.queryService)
		return a.dashboard.Init(), true
	case key.Matches(msg, keys.Activities):
		a.screen = ScreenActivities
		return a.activities.Init(), true
	case key.Matches(msg, keys.Sync) && a.screen != ScreenSync:
		a.screen = ScreenSync
		return a.syncScreen.Init(), true
	case key.Matches(msg, keys.Help) && a.screen != ScreenHelp:
		a.prevScreen = a.screen
		a.screen = ScreenHelp
		return nil, true
	case key.Matches(msg, keys.Back) && a.screen == ScreenHelp:
		a.screen = a.prevScreen
		return nil, true
	}
	return nil, false
}

func (a *App) updateScreen(msg tea.Msg) tea.Cmd {
	var m tea.Model
	var cmd tea.Cmd

	switch a.screen {
	case ScreenDashboard:
		m, cmd = a.dashboard.Update(msg)
		a.dashboard = m.(DashboardModel)
	case ScreenActivities:
		m, cmd = a.activities.Update(msg)
		a.activities = m.(ActivitiesModel)
	case ScreenSync:
		m, cmd = a.syncScreen.Update(msg)
		a.syncScreen = m.(SyncModel)
	case ScreenHelp:
		m, cmd = a.helpScreen.Update(msg)
		a.helpScreen = m.(HelpModel)
	}
	return cmd
}

// View renders the app
func (a *App) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render("Loadwatch: Training Load & Injury Risk"),
		a.renderTabs(),
		a.current().View(),
		a.renderFooter(),
	)
}

func (a *App) current() tea.Model {
	switch a.screen {
	case ScreenActivities:
		return a.activities
	case ScreenSync:
		return a.syncScreen
	case ScreenHelp:
		return a.helpScreen
	}
	return a.dashboard
}

func (a *App) renderTabs() string {
	labels := make([]string, 0, len(tabs)+1)
	for _, t := range tabs {
		h := t.binding.Help()
		label := "[" + h.Key + "] " + h.Desc
		if a.screen == t.screen {
			labels = append(labels, navActiveStyle.Render(label))
		} else {
			labels = append(labels, navInactiveStyle.Render(label))
		}
	}
	h := keys.Quit.Help()
	labels = append(labels, navInactiveStyle.Render("["+h.Key+"] "+h.Desc))

	return navStyle.Render(strings.Join(labels, "  "))
}

func (a *App) renderFooter() string {
	var lines []string
	if a.status != "" {
		lines = append(lines, a.status)
	}
	lines = append(lines, a.footerHelp.ShortHelpView(keys.ShortHelp()))
	return statusStyle.Render(strings.Join(lines, "\n"))
}

// SyncCompleteMsg is sent when a sync and analysis run finishes
type SyncCompleteMsg struct{}
