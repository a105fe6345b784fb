package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/habitchain/internal/habits"
	"go.uber.org/zap"
)

// visible returns the habits matching the current search query.
func (m Model) visible() []habits.Habit {
	return habits.Filter(m.list.All(), m.search.Value())
}

func (m *Model) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) updateHome(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if m.searching {
		if ok {
			switch k.Type {
			case tea.KeyEsc:
				m.search.SetValue("")
				m.search.Blur()
				m.searching = false
				m.clampCursor()
				return m, nil
			case tea.KeyEnter:
				m.search.Blur()
				m.searching = false
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.clampCursor()
		return m, cmd
	}
	if !ok {
		return m, nil
	}

	m.notice = ""
	switch {
	case key.Matches(k, m.keys.QuitShort):
		return m, tea.Quit
	case key.Matches(k, m.keys.Back):
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.clampCursor()
		}
		return m, nil
	case key.Matches(k, m.keys.Search):
		m.searching = true
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(k, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(k, m.keys.Down):
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(k, m.keys.Toggle):
		rows := m.visible()
		if m.cursor < len(rows) {
			h, err := m.list.Toggle(rows[m.cursor].ID)
			if err != nil {
				m.err = err.Error()
				return m, nil
			}
			m.log.Debug("habit toggled", zap.String("id", h.ID), zap.Bool("checked", h.Checked))
		}
		return m, nil
	case key.Matches(k, m.keys.AddHabit):
		return m.navigate(ScreenHabit)
	case key.Matches(k, m.keys.Tracker):
		return m.navigate(ScreenTracker)
	case key.Matches(k, m.keys.SignOut):
		if m.auth == nil {
			return m, nil
		}
		m.busy = true
		m.err = ""
		a, ctx := m.auth, m.ctx
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			return signedOutMsg{err: a.SignOut(ctx)}
		})
	}
	return m, nil
}

func (m Model) viewHome() string {
	var b strings.Builder

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("Today's Habits"),
		"   ",
		streakBoxStyle.Render(fmt.Sprintf("🔥 %s streak points",
			streakPointsStyle.Render(fmt.Sprint(m.list.StreakPoints())))),
	)
	b.WriteString(header + "\n")

	box := searchBoxStyle
	if m.searching {
		box = activeSearchBoxStyle
	}
	b.WriteString(box.Render(m.search.View()) + "\n")

	rows := m.visible()
	if len(rows) == 0 {
		b.WriteString(subtleStyle.Render("No habits match your search.") + "\n")
		return b.String()
	}

	nameWidth := max(10, m.Width-36)
	for i, h := range rows {
		mark := uncheckedStyle.Render("○")
		if h.Checked {
			mark = checkedStyle.Render("✓")
		}
		name := lipgloss.NewStyle().Width(nameWidth).Render(ansi.Truncate(h.Name, nameWidth, "…"))
		line := fmt.Sprintf("%s %s  %s  %s  %s",
			swatch(h.Color).Render(""),
			h.Icon.Glyph(),
			name,
			subtleStyle.Render(fmt.Sprintf("%d day streak 🔥", h.Streak)),
			mark,
		)
		if i == m.cursor {
			line = selectedRowStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
