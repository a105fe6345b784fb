package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const tagline = "🚀 Small Steps. Big Streaks 🔗"

// The splash screen only waits; the coordinator decides where to go next.
func (m Model) updateSplash(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, m.keys.QuitShort) {
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) viewSplash() string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		logoStyle.Render("HabitChain"),
		"",
		taglineStyle.Render(tagline),
		"",
		m.spinner.View(),
	)
	return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, content)
}
