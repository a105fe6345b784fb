package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/marcus/habitchain/internal/habits"
	"go.uber.org/zap"
)

// habitForm holds the add-habit form and its bound values.
type habitForm struct {
	form *huh.Form
	in   habits.Input
}

func newHabitForm(in habits.Input) *habitForm {
	f := &habitForm{in: in}

	libraries := make([]huh.Option[string], 0, len(habits.Libraries()))
	for _, lib := range habits.Libraries() {
		libraries = append(libraries, huh.NewOption(string(lib), string(lib)))
	}

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit name").
				Placeholder("Morning run").
				Validate(habits.ValidateName).
				Value(&f.in.Name),
			huh.NewInput().
				Title("Duration").
				Validate(habits.ValidateDuration).
				Value(&f.in.Duration),
			huh.NewSelect[string]().
				Title("Unit").
				Options(
					huh.NewOption(string(habits.Minutes), string(habits.Minutes)),
					huh.NewOption(string(habits.Hours), string(habits.Hours)),
				).
				Value(&f.in.Unit),
			huh.NewInput().
				Title("Start date").
				Description("optional: " + habits.DateLayout + ", today, +3d, monday").
				Validate(habits.ValidateStartDate).
				Value(&f.in.StartDate),
		).Title("New Habit"),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Icon library").
				Options(libraries...).
				Value(&f.in.IconLibrary),
			huh.NewInput().
				Title("Icon").
				Validate(func(name string) error {
					_, err := habits.ParseIcon(f.in.IconLibrary, name)
					return err
				}).
				Value(&f.in.IconName),
		).Title("Icon"),
	).WithTheme(huh.ThemeCharm()).WithShowHelp(false)
	return f
}

func (m Model) updateHabit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, m.keys.Back) {
		return m.back()
	}

	form, cmd := m.habit.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.habit.form = f
	}
	if m.habit.form.State != huh.StateCompleted {
		return m, cmd
	}

	h, err := habits.NewHabit(m.habit.in, m.now())
	if err != nil {
		m.log.Debug("add habit rejected", zap.Error(err))
		in := m.habit.in
		m.habit = newHabitForm(in)
		m.err = err.Error()
		return m, m.habit.form.Init()
	}
	h = m.list.Add(h)
	m.log.Info("habit added", zap.String("id", h.ID), zap.String("name", h.Name))

	next, cmd := m.back()
	next.notice = fmt.Sprintf("Added %q", h.Name)
	return next, cmd
}

func (m Model) viewHabit() string {
	return m.habit.form.View()
}
