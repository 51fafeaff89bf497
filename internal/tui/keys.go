package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the global bindings. Screen-local keys live with their
// screens but are listed here so the help screen can show them.
type keyMap struct {
	Dashboard  key.Binding
	Activities key.Binding
	Sync       key.Binding
	Help       key.Binding
	Back       key.Binding
	Quit       key.Binding

	Refresh key.Binding
	Run     key.Binding
	Up      key.Binding
	Down    key.Binding
}

var keys = keyMap{
	Dashboard:  key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "dashboard")),
	Activities: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "activities")),
	Sync:       key.NewBinding(key.WithKeys("3", "s"), key.WithHelp("3/s", "sync & analyze")),
	Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Run:     key.NewBinding(key.WithKeys("s", "enter"), key.WithHelp("s/enter", "start sync")),
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Dashboard, k.Activities, k.Sync, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Dashboard, k.Activities, k.Sync, k.Help, k.Back, k.Quit},
		{k.Refresh, k.Up, k.Down, k.Run},
	}
}
