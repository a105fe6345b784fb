package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every binding; each screen shows the subset it handles.
type keyMap struct {
	Quit       key.Binding
	QuitShort  key.Binding
	Google     key.Binding
	ToSignUp   key.Binding
	Back       key.Binding
	Continue   key.Binding
	Up         key.Binding
	Down       key.Binding
	Toggle     key.Binding
	Search     key.Binding
	AddHabit   key.Binding
	Tracker    key.Binding
	SignOut    key.Binding
	PrevFilter key.Binding
	NextFilter key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		QuitShort: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Google: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("ctrl+g", "sign in with Google"),
		),
		ToSignUp: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "create account"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Continue: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "continue"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "enter", "x"),
			key.WithHelp("space", "check"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		AddHabit: key.NewBinding(
			key.WithKeys("a", "+"),
			key.WithHelp("a", "add habit"),
		),
		Tracker: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "tracker"),
		),
		SignOut: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "sign out"),
		),
		PrevFilter: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev activity"),
		),
		NextFilter: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next activity"),
		),
	}
}
