// Package models defines the scheduler's domain types and the canonical
// formats they travel in. Dates are "YYYY-MM-DD" strings, times of day are a
// clock-only pair, and everything human-readable is derived from those at
// the moment of display.
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the canonical calendar-date format used in storage, on the
// wire, and as the grouping key for views.
const DateLayout = "2006-01-02"

// displayDateLayout renders a date for humans, e.g. "Monday, January 2, 2006".
const displayDateLayout = "Monday, January 2, 2006"

// TimeOfDay is a clock time with no date and no zone attached. It orders and
// serializes as "HH:MM".
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses the canonical "HH:MM" form.
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	var t TimeOfDay
	if _, err := fmt.Sscanf(raw, "%02d:%02d", &t.Hour, &t.Minute); err != nil {
		return TimeOfDay{}, &ValidationError{Field: "time", Reason: fmt.Sprintf("expected HH:MM, got %q", raw)}
	}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return TimeOfDay{}, &ValidationError{Field: "time", Reason: fmt.Sprintf("%q is not a valid clock time", raw)}
	}
	return t, nil
}

func (t TimeOfDay) minutes() int {
	return t.Hour*60 + t.Minute
}

// Before reports whether t is strictly earlier than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.minutes() < other.minutes()
}

func (t TimeOfDay) Equal(other TimeOfDay) bool {
	return t.minutes() == other.minutes()
}

// AddMinutes returns t shifted forward by n minutes. The result is not
// clamped to a 24-hour clock; callers compare against a window end instead.
func (t TimeOfDay) AddMinutes(n int) TimeOfDay {
	total := t.minutes() + n
	return TimeOfDay{Hour: total / 60, Minute: total % 60}
}

// String returns the canonical "HH:MM" form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Display returns the 12-hour form shown to visitors, e.g. "9:05 AM".
func (t TimeOfDay) Display() string {
	period := "AM"
	hours := t.Hour
	if hours >= 12 {
		period = "PM"
	}
	hours = hours % 12
	if hours == 0 {
		hours = 12
	}
	return fmt.Sprintf("%d:%02d %s", hours, t.Minute, period)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// DisplayDate renders a canonical date for humans. It is computed from the
// canonical value on every call; the pretty form is never stored, so it can
// never go stale against the date it came from.
func DisplayDate(date string) string {
	parsed, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return parsed.Format(displayDateLayout)
}

// ValidDate reports whether date is a real calendar date in canonical form.
func ValidDate(date string) bool {
	_, err := time.Parse(DateLayout, date)
	return err == nil
}
