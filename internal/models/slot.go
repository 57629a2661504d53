package models

import (
	"strings"
	"time"
)

// Slot is one bookable viewing window on one date. SlotLength is minutes.
type Slot struct {
	ID         string    `json:"id"`
	Date       string    `json:"date"`
	Time       TimeOfDay `json:"time"`
	SlotLength int       `json:"slot_length"`
	CreatedAt  time.Time `json:"created_at"`
}

// End returns the moment the viewing window closes.
func (s Slot) End() TimeOfDay {
	return s.Time.AddMinutes(s.SlotLength)
}

// DisplayDate returns the slot's date rendered for humans.
func (s Slot) DisplayDate() string {
	return DisplayDate(s.Date)
}

// CompareSlots orders slots by date, then start time, then id as a final
// tiebreaker so the ordering is total.
func CompareSlots(a, b Slot) int {
	if c := strings.Compare(a.Date, b.Date); c != 0 {
		return c
	}
	if a.Time.Before(b.Time) {
		return -1
	}
	if b.Time.Before(a.Time) {
		return 1
	}
	return strings.Compare(a.ID, b.ID)
}

// SlotConfig is the administrator's generation request: tile SlotLength-minute
// slots across [StartTime, EndTime) on Date.
type SlotConfig struct {
	Date       string    `json:"date"`
	StartTime  TimeOfDay `json:"start_time"`
	EndTime    TimeOfDay `json:"end_time"`
	SlotLength int       `json:"slot_length"`
}

func (c SlotConfig) Validate() error {
	if !ValidDate(c.Date) {
		return &ValidationError{Field: "date", Reason: "expected YYYY-MM-DD"}
	}
	if c.SlotLength <= 0 {
		return &ValidationError{Field: "slot_length", Reason: "must be a positive number of minutes"}
	}
	if !c.StartTime.Before(c.EndTime) {
		return &ValidationError{Field: "start_time", Reason: "start must be before end"}
	}
	return nil
}
