package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const trackerDateLayout = "Jan 2, 2006"

func (m Model) updateTracker(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(k, m.keys.QuitShort):
		return m, tea.Quit
	case key.Matches(k, m.keys.Back):
		return m.back()
	case key.Matches(k, m.keys.PrevFilter):
		if m.activity > 0 {
			m.activity--
		}
	case key.Matches(k, m.keys.NextFilter):
		if m.activity < len(m.dash.Activities)-1 {
			m.activity++
		}
	}
	return m, nil
}

func (m Model) viewTracker() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Tracker") + "  " +
		subtleStyle.Render(m.now().Format(trackerDateLayout)) + "\n\n")

	cards := make([]string, 0, len(m.dash.Cards))
	for _, c := range m.dash.Cards {
		style := cardStyle
		if c.Color != "" {
			style = style.BorderForeground(lipgloss.Color(c.Color))
		}
		cards = append(cards, style.Render(
			c.Title+"\n"+cardValueStyle.Render(c.Value)+" "+subtleStyle.Render(c.Unit)))
	}
	perRow := max(1, (m.Width-4)/18)
	for i := 0; i < len(cards); i += perRow {
		end := min(i+perRow, len(cards))
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...) + "\n")
	}

	if len(m.dash.Activities) > 0 {
		b.WriteString(sectionHeader.Render("Activities") + "\n")
		chips := make([]string, 0, len(m.dash.Activities))
		for i, a := range m.dash.Activities {
			if i == m.activity {
				chips = append(chips, activeChipStyle.Render(a))
			} else {
				chips = append(chips, chipStyle.Render(a))
			}
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, chips...) + "\n")
	}
	return b.String()
}
