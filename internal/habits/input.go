package habits

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marcus/habitchain/internal/dateparse"
)

// DateLayout is the absolute start date format.
const DateLayout = dateparse.Layout

// Input is the raw add-habit form.
type Input struct {
	Name        string
	Duration    string
	Unit        string
	StartDate   string // optional; absolute or relative, see dateparse
	IconLibrary string
	IconName    string
}

// DefaultInput returns the form's initial values.
func DefaultInput() Input {
	return Input{
		Duration:    "15",
		Unit:        string(Minutes),
		IconLibrary: string(DefaultIcon.Library),
		IconName:    DefaultIcon.Name,
	}
}

// ValidateName checks the habit name.
func ValidateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("habit name is required")
	}
	return nil
}

// ValidateDuration checks that s is a positive whole number.
func ValidateDuration(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return errors.New("duration must be a positive whole number")
	}
	return nil
}

// ValidateStartDate accepts an empty string or anything dateparse reads,
// such as "2024-10-29", "today" or "+3d".
func ValidateStartDate(s string) error {
	_, err := parseStartDate(s, time.Now())
	return err
}

func parseStartDate(s string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	t, err := dateparse.Parse(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("start date: %w", err)
	}
	return t, nil
}

func parseUnit(s string) (Unit, error) {
	switch Unit(strings.TrimSpace(s)) {
	case Minutes:
		return Minutes, nil
	case Hours:
		return Hours, nil
	}
	return "", fmt.Errorf("unit must be %s or %s", Minutes, Hours)
}

// NewHabit validates in and builds an unchecked habit with a zero streak.
// Relative start dates are resolved against now.
func NewHabit(in Input, now time.Time) (Habit, error) {
	if err := ValidateName(in.Name); err != nil {
		return Habit{}, err
	}
	if err := ValidateDuration(in.Duration); err != nil {
		return Habit{}, err
	}
	unit, err := parseUnit(in.Unit)
	if err != nil {
		return Habit{}, err
	}
	start, err := parseStartDate(in.StartDate, now)
	if err != nil {
		return Habit{}, err
	}
	icon, err := ParseIcon(in.IconLibrary, in.IconName)
	if err != nil {
		return Habit{}, err
	}

	duration, _ := strconv.Atoi(strings.TrimSpace(in.Duration))
	h := Habit{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Duration:  duration,
		Unit:      unit,
		Icon:      icon,
		StartDate: start,
	}
	return h, nil
}
