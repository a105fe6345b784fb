// Package dateparse turns absolute and relative date input into a calendar
// day.
package dateparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Layout is the absolute date format.
const Layout = "2006-01-02"

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Parse returns midnight of the day input names, in now's location.
//
// Supported formats:
//   - Exact dates: "2026-03-01"
//   - Keywords: "today", "yesterday", "tomorrow", "next-week", "next-month"
//   - Offsets: "+7d", "-2w", "+1m"
//   - Day names: "monday", "tue" (next occurrence, never today)
func Parse(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return time.Time{}, fmt.Errorf("empty date input")
	}
	today := day(now)

	if t, err := time.ParseInLocation(Layout, input, now.Location()); err == nil {
		return t, nil
	}

	switch input {
	case "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "next-week":
		return next(today, time.Monday), nil
	case "next-month":
		year, month, _ := today.Date()
		return time.Date(year, month+1, 1, 0, 0, 0, 0, now.Location()), nil
	}

	if input[0] == '+' || input[0] == '-' {
		return offset(today, input)
	}

	if wd, ok := weekday(input); ok {
		return next(today, wd), nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q (use %s, today, +3d or a day name)", input, Layout)
}

// offset applies a signed "Nd", "Nw" or "Nm" offset to today.
func offset(today time.Time, input string) (time.Time, error) {
	if len(input) < 3 {
		return time.Time{}, fmt.Errorf("incomplete offset %q", input)
	}
	unit := input[len(input)-1]
	n, err := strconv.Atoi(input[1 : len(input)-1])
	if err != nil || n < 0 {
		return time.Time{}, fmt.Errorf("bad offset %q", input)
	}
	if input[0] == '-' {
		n = -n
	}
	switch unit {
	case 'd':
		return today.AddDate(0, 0, n), nil
	case 'w':
		return today.AddDate(0, 0, 7*n), nil
	case 'm':
		return today.AddDate(0, n, 0), nil
	}
	return time.Time{}, fmt.Errorf("unknown unit %q in %q (use d, w, or m)", string(unit), input)
}

// weekday matches full names and three-letter abbreviations.
func weekday(s string) (time.Weekday, bool) {
	if wd, ok := weekdays[s]; ok {
		return wd, true
	}
	if len(s) == 3 {
		for name, wd := range weekdays {
			if strings.HasPrefix(name, s) {
				return wd, true
			}
		}
	}
	return 0, false
}

// next returns the first target weekday strictly after today.
func next(today time.Time, target time.Weekday) time.Time {
	ahead := (int(target) - int(today.Weekday()) + 7) % 7
	if ahead == 0 {
		ahead = 7
	}
	return today.AddDate(0, 0, ahead)
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
