package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Base colors
	primaryColor   = lipgloss.Color("#6C63FF")
	deepColor      = lipgloss.Color("#7C3AED")
	accentColor    = lipgloss.Color("#FFB400")
	successColor   = lipgloss.Color("#22C55E")
	mutedColor     = lipgloss.Color("241")
	errorColor     = lipgloss.Color("196")
	uncheckedColor = lipgloss.Color("250")

	// Text styles
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	subtleStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	helpStyle     = lipgloss.NewStyle().Foreground(mutedColor).MarginTop(1)
	errorStyle    = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	taglineStyle  = lipgloss.NewStyle().Foreground(accentColor).Italic(true)
	logoStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(primaryColor).Padding(1, 4)
	sectionHeader = lipgloss.NewStyle().Bold(true).MarginTop(1)

	// Streak box
	streakBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 2)
	streakPointsStyle = lipgloss.NewStyle().Bold(true).Foreground(deepColor)

	// Habit rows
	selectedRowStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("237")).
				Foreground(lipgloss.Color("255"))
	checkedStyle   = lipgloss.NewStyle().Foreground(successColor).Bold(true)
	uncheckedStyle = lipgloss.NewStyle().Foreground(uncheckedColor)

	// Tracker cards
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(16)
	cardValueStyle = lipgloss.NewStyle().Bold(true)
	chipStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	activeChipStyle = chipStyle.BorderForeground(primaryColor).Foreground(primaryColor).Bold(true)

	// Search box
	searchBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
	activeSearchBoxStyle = searchBoxStyle.BorderForeground(primaryColor)
)

// swatch renders a small colored block for a habit.
func swatch(hex string) lipgloss.Style {
	return lipgloss.NewStyle().Background(lipgloss.Color(hex)).Padding(0, 1)
}
