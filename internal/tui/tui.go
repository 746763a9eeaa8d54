// Package tui is the interactive console: one tab per management
// screen plus the dashboard, all backed by the generic list controller
// and the HTTP client. Remote calls run as commands; their completion
// messages carry tokens (refresh generation, save ticket) so late
// responses can never clobber newer state.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"crmdeck/internal/api"
	"crmdeck/internal/session"
)

// Run starts the console for an authenticated session and blocks until
// the user quits.
func Run(client *api.Client, sess session.Session) error {
	applyColorProfilePreference()
	applyThemePreference()

	p := tea.NewProgram(newAppModel(client, sess), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
