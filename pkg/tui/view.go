package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// View implements tea.Model.
func (m Model) View() string {
	var body string
	var bindings []key.Binding

	switch m.Screen() {
	case ScreenSplash:
		return m.viewSplash()
	case ScreenLogin:
		body = m.viewLogin()
		bindings = []key.Binding{m.keys.Google, m.keys.ToSignUp, m.keys.Quit}
	case ScreenSignUp:
		body = m.viewSignUp()
		bindings = []key.Binding{m.keys.Back, m.keys.Quit}
	case ScreenIntro:
		body = m.viewIntro()
		bindings = []key.Binding{m.keys.Continue, m.keys.Up, m.keys.Down, m.keys.QuitShort}
	case ScreenHome:
		body = m.viewHome()
		if m.searching {
			bindings = []key.Binding{m.keys.Back, m.keys.Continue}
		} else {
			bindings = []key.Binding{m.keys.Up, m.keys.Down, m.keys.Toggle, m.keys.Search,
				m.keys.AddHabit, m.keys.Tracker, m.keys.SignOut, m.keys.QuitShort}
		}
	case ScreenHabit:
		body = m.viewHabit()
		bindings = []key.Binding{m.keys.Back, m.keys.Quit}
	case ScreenTracker:
		body = m.viewTracker()
		bindings = []key.Binding{m.keys.PrevFilter, m.keys.NextFilter, m.keys.Back, m.keys.QuitShort}
	}

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n")
	if m.busy {
		b.WriteString("\n" + m.spinner.View() + " Working...")
		if m.cancel != nil {
			b.WriteString(subtleStyle.Render("  esc to cancel"))
		}
		b.WriteString("\n")
	}
	if m.err != "" {
		b.WriteString("\n" + errorStyle.Render(m.err) + "\n")
	}
	if m.notice != "" {
		b.WriteString("\n" + checkedStyle.Render(m.notice) + "\n")
	}
	b.WriteString(helpStyle.Render(m.help.ShortHelpView(bindings)))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
