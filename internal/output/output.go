// Package output provides styled terminal output helpers (success, error,
// warning, key/value listings, auth history) using lipgloss.
package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/habitchain/internal/auth"
	"github.com/marcus/habitchain/internal/identity"
)

var (
	// Styles
	titleStyle   = lipgloss.NewStyle().Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	eventStyles  = map[string]lipgloss.Style{
		auth.EventSignIn:       lipgloss.NewStyle().Foreground(lipgloss.Color("45")),
		auth.EventSignUp:       lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
		auth.EventGoogleSignIn: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		auth.EventSignOut:      lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}
)

// Success prints a success message
func Success(format string, args ...interface{}) {
	fmt.Println(successStyle.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	fmt.Println(errorStyle.Render("ERROR: " + fmt.Sprintf(format, args...)))
}

// Warning prints a warning message
func Warning(format string, args ...interface{}) {
	fmt.Println(warningStyle.Render("Warning: " + fmt.Sprintf(format, args...)))
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	fmt.Println(fmt.Sprintf(format, args...))
}

// JSON outputs data as JSON
func JSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// FormatTimeAgo formats a time as a human-readable "ago" string
func FormatTimeAgo(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	default:
		return t.Format("2006-01-02")
	}
}

// SectionHeader returns a formatted section header for CLI output
// e.g., "\nSETTINGS:\n"
func SectionHeader(title string) string {
	return fmt.Sprintf("\n%s:\n", strings.ToUpper(title))
}

// KeyValues aligns pairs into "key  value" lines.
func KeyValues(pairs [][2]string) string {
	width := 0
	for _, kv := range pairs {
		width = max(width, len(kv[0]))
	}
	var sb strings.Builder
	for _, kv := range pairs {
		value := kv[1]
		if value == "" {
			value = subtleStyle.Render("(unset)")
		}
		fmt.Fprintf(&sb, "%-*s  %s\n", width, kv[0], value)
	}
	return sb.String()
}

// FormatUser formats the signed-in user for `auth status`.
func FormatUser(u *identity.User) string {
	if u == nil {
		return subtleStyle.Render("Not signed in.")
	}
	pairs := [][2]string{
		{"Name:", u.Name()},
		{"Email:", u.Email},
		{"UID:", u.UID},
		{"Provider:", u.ProviderID},
	}
	if !u.ExpiresAt.IsZero() {
		expiry := u.ExpiresAt.Format(time.RFC3339)
		if time.Until(u.ExpiresAt) <= 0 {
			expiry += " " + warningStyle.Render("(expired, refreshed on next launch)")
		}
		pairs = append(pairs, [2]string{"Token expires:", expiry})
	}
	return titleStyle.Render("Signed in") + "\n" + KeyValues(pairs)
}

// FormatEntry formats one auth history entry.
func FormatEntry(e auth.Entry) string {
	mark := successStyle.Render("✓")
	if !e.OK {
		mark = errorStyle.Render("✗")
	}
	event := e.Event
	if style, ok := eventStyles[e.Event]; ok {
		event = style.Render(fmt.Sprintf("%-14s", e.Event))
	}

	parts := []string{
		mark,
		subtleStyle.Render(fmt.Sprintf("%-8s", FormatTimeAgo(e.At))),
		event,
	}
	if e.Email != "" {
		parts = append(parts, e.Email)
	}
	if e.Reason != "" {
		parts = append(parts, subtleStyle.Render("("+string(e.Reason)+")"))
	}
	return strings.Join(parts, "  ")
}
