package tui

import (
	_ "embed"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"go.uber.org/zap"
)

//go:embed intro.md
var introMarkdown string

// introChrome is the height taken by the footer around the viewport.
const introChrome = 6

// renderIntro renders the onboarding text at the current width.
func (m *Model) renderIntro() {
	width := max(20, m.Width-4)
	height := max(5, m.Height-introChrome)

	content := introMarkdown
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(styles.DarkStyle),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		content, err = r.Render(introMarkdown)
	}
	if err != nil {
		m.log.Warn("render intro", zap.Error(err))
		content = introMarkdown
	}

	if !m.introReady {
		m.intro = viewport.New(width, height)
		m.introReady = true
	} else {
		m.intro.Width = width
		m.intro.Height = height
	}
	m.intro.SetContent(content)
}

func (m Model) updateIntro(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, m.keys.Continue):
			return m.replace(ScreenHome)
		case key.Matches(k, m.keys.QuitShort):
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.intro, cmd = m.intro.Update(msg)
	return m, cmd
}

func (m Model) viewIntro() string {
	return m.intro.View() + "\n" + titleStyle.Render("[ Continue ]")
}
