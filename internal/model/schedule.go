package model

import (
	"fmt"
	"time"
)

// BusinessHours configures one weekday (0=Monday .. 6=Sunday). A weekday with
// no row at all is closed; the fail-closed default lives in the lookup path,
// not here.
type BusinessHours struct {
	Weekday     int
	Active      bool
	OpenMinute  int
	CloseMinute int
}

// BlackoutDate marks a calendar date fully closed regardless of weekday
// configuration (holiday, vacation).
type BlackoutDate struct {
	Date      time.Time
	Reason    string
	CreatedAt time.Time
}

// WeekdayIndex maps a date to the Monday-based weekday index used by the
// business-hours table (Go weeks start on Sunday).
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// ParseClock parses an "HH:MM" time of day into minutes from midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes from midnight as "HH:MM".
func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}
