// Package habits holds the in-memory habit list and tracker dashboard
// shown by the application screens. Nothing here is persisted; the list
// starts from embedded sample data on every run.
package habits

import (
	_ "embed"
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed sample.yaml
var sampleYAML []byte

// ErrNotFound is returned for an unknown habit ID.
var ErrNotFound = errors.New("habit not found")

// Unit is the duration unit of a habit.
type Unit string

const (
	Minutes Unit = "Minutes"
	Hours   Unit = "Hours"
)

// Habit is one tracked habit.
type Habit struct {
	ID        string    `yaml:"id"`
	Name      string    `yaml:"name"`
	Color     string    `yaml:"color"`
	Streak    int       `yaml:"streak"`
	Checked   bool      `yaml:"checked"`
	Duration  int       `yaml:"duration,omitempty"`
	Unit      Unit      `yaml:"unit,omitempty"`
	StartDate time.Time `yaml:"start_date,omitempty"`
	Icon      Icon      `yaml:"icon"`
}

// Card is one tile on the tracker dashboard.
type Card struct {
	Title string `yaml:"title"`
	Value string `yaml:"value"`
	Unit  string `yaml:"unit"`
	Color string `yaml:"color"`
}

// Dashboard is the tracker screen's content.
type Dashboard struct {
	Cards      []Card   `yaml:"cards"`
	Activities []string `yaml:"activities"`
}

type sample struct {
	StreakPoints int       `yaml:"streak_points"`
	Habits       []Habit   `yaml:"habits"`
	Dashboard    Dashboard `yaml:"dashboard"`
}

func loadSample() (sample, error) {
	var s sample
	if err := yaml.Unmarshal(sampleYAML, &s); err != nil {
		return sample{}, fmt.Errorf("parse sample data: %w", err)
	}
	for _, h := range s.Habits {
		if _, err := ParseIcon(string(h.Icon.Library), h.Icon.Name); err != nil {
			return sample{}, fmt.Errorf("sample habit %s: %w", h.ID, err)
		}
	}
	return s, nil
}

// List is the ordered habit list with its streak points.
type List struct {
	habits []Habit
	points int
}

// SampleList returns a fresh list seeded with the sample habits.
func SampleList() (*List, error) {
	s, err := loadSample()
	if err != nil {
		return nil, err
	}
	return &List{habits: s.Habits, points: s.StreakPoints}, nil
}

// SampleDashboard returns the tracker dashboard content.
func SampleDashboard() (Dashboard, error) {
	s, err := loadSample()
	if err != nil {
		return Dashboard{}, err
	}
	return s.Dashboard, nil
}

// All returns a copy of the habits in display order.
func (l *List) All() []Habit {
	out := make([]Habit, len(l.habits))
	copy(out, l.habits)
	return out
}

// Len returns the number of habits.
func (l *List) Len() int { return len(l.habits) }

// StreakPoints returns the displayed streak points. The value comes from
// the sample data and is not derived from the habits.
func (l *List) StreakPoints() int { return l.points }

// Toggle flips the checked state of the habit with id.
func (l *List) Toggle(id string) (Habit, error) {
	for i := range l.habits {
		if l.habits[i].ID == id {
			l.habits[i].Checked = !l.habits[i].Checked
			return l.habits[i], nil
		}
	}
	return Habit{}, fmt.Errorf("toggle %s: %w", id, ErrNotFound)
}

// Add appends h, assigning a color when h has none.
func (l *List) Add(h Habit) Habit {
	if h.Color == "" {
		h.Color = palette[len(l.habits)%len(palette)]
	}
	l.habits = append(l.habits, h)
	return h
}

var palette = []string{"#A390F0", "#7CE7F9", "#FBA1B7", "#A8D8EA", "#C1F2B0", "#FFB400"}
