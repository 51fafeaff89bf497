package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"loadwatch/internal/service"
)

// SyncModel is the sync screen model. Without a sync service only the
// analysis runs.
type SyncModel struct {
	syncService     *service.SyncService
	analysisService *service.AnalysisService
	spinner         spinner.Model
	syncing         bool
	done            bool

	syncResult     *service.SyncResult
	analysisResult *service.AnalysisResult
	syncErr        error
	analysisErr    error
}

// NewSyncModel creates a new sync model
func NewSyncModel(ss *service.SyncService, as *service.AnalysisService) SyncModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(primaryColor)

	return SyncModel{
		syncService:     ss,
		analysisService: as,
		spinner:         sp,
	}
}

// Init initializes the sync screen
func (m SyncModel) Init() tea.Cmd {
	return nil
}

// SyncDoneMsg is sent when sync and analysis finish
type SyncDoneMsg struct {
	Sync        *service.SyncResult
	SyncErr     error
	Analysis    *service.AnalysisResult
	AnalysisErr error
}

// Update handles messages
func (m SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SyncDoneMsg:
		m.syncing = false
		m.done = true
		m.syncResult = msg.Sync
		m.syncErr = msg.SyncErr
		m.analysisResult = msg.Analysis
		m.analysisErr = msg.AnalysisErr
		return m, func() tea.Msg { return SyncCompleteMsg{} }

	case spinner.TickMsg:
		if !m.syncing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if !m.syncing && key.Matches(msg, keys.Run) {
			m = m.reset()
			m.syncing = true
			return m, tea.Batch(m.spinner.Tick, m.run)
		}
	}
	return m, nil
}

// reset clears the previous run's results
func (m SyncModel) reset() SyncModel {
	m.done = false
	m.syncResult, m.analysisResult = nil, nil
	m.syncErr, m.analysisErr = nil, nil
	return m
}

func (m SyncModel) run() tea.Msg {
	var done SyncDoneMsg

	if m.syncService != nil {
		done.Sync, done.SyncErr = m.syncService.SyncAll(context.Background(), nil)
	}
	// analyze even after a failed sync; stored activities are still valid
	done.Analysis, done.AnalysisErr = m.analysisService.Run()

	return done
}

// View renders the sync screen
func (m SyncModel) View() string {
	var sections []string

	sections = append(sections, cardTitleStyle.Render("Sync & Analyze"))

	switch {
	case m.syncing:
		sections = append(sections, m.renderProgress())
	case m.done:
		sections = append(sections, m.renderSummary())
		sections = append(sections, "\n"+statusStyle.Render("  Press '1' to go to dashboard, 's' to run again"))
	default:
		sections = append(sections, m.renderStartPrompt())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m SyncModel) renderStartPrompt() string {
	var lines []string

	lines = append(lines, "")
	if m.syncService != nil {
		lines = append(lines, "  1. Fetch new activities from Strava")
		lines = append(lines, "  2. Recompute acute and chronic load")
		lines = append(lines, "  3. Write the latest risk summary")
		lines = append(lines, "")
		if short, daily, ok := m.syncService.RateLimitStatus(); ok {
			lines = append(lines, statusStyle.Render(fmt.Sprintf("  API limits: %d/100 (15min), %d/1000 (daily)", short, daily)))
			lines = append(lines, "")
		}
	} else {
		lines = append(lines, "  Strava is not configured; only the analysis will run.")
		lines = append(lines, "")
	}
	lines = append(lines, statusStyle.Render("  Press 's' or Enter to start"))

	return strings.Join(lines, "\n")
}

func (m SyncModel) renderProgress() string {
	phase := "Analyzing training load..."
	if m.syncService != nil {
		phase = "Syncing with Strava and analyzing..."
	}
	return "\n  " + m.spinner.View() + " " + phase
}

func (m SyncModel) renderSummary() string {
	var lines []string
	lines = append(lines, "")

	switch {
	case m.syncErr != nil:
		lines = append(lines, errorStyle.Render(fmt.Sprintf("  Sync failed: %v", m.syncErr)))
	case m.syncResult != nil:
		r := m.syncResult
		if r.ActivitiesStored > 0 {
			lines = append(lines, successStyle.Render(fmt.Sprintf("  %d activities synced", r.ActivitiesStored)))
		} else {
			lines = append(lines, statusStyle.Render("  No new activities"))
		}
		if len(r.Skipped) > 0 {
			lines = append(lines, warningStyle.Render(fmt.Sprintf("  %d activities skipped", len(r.Skipped))))
		}
	}

	switch {
	case service.IsInsufficient(m.analysisErr):
		lines = append(lines, warningStyle.Render("  Not enough training history for a ratio yet"))
	case m.analysisErr != nil:
		lines = append(lines, errorStyle.Render(fmt.Sprintf("  Analysis failed: %v", m.analysisErr)))
	case m.analysisResult != nil:
		s := m.analysisResult.Summary
		lines = append(lines, successStyle.Render(fmt.Sprintf("  ACWR %.2f ", *s.ACWR))+riskStyle(s.Status).Render(s.Status.Label()))
		lines = append(lines, mutedStyle.Render("  Load source: "+m.analysisResult.Load.SourceLabel()))
	}

	return strings.Join(lines, "\n")
}
