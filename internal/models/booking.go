package models

import (
	"strings"
	"time"
)

// Booking is a visitor's reservation against exactly one slot. The slot is
// referenced by id only; the booking does not own it.
type Booking struct {
	ID       string    `json:"id"`
	SlotID   string    `json:"slot_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	Notes    string    `json:"notes,omitempty"`
	BookedAt time.Time `json:"booked_at"`
}

// VisitorDetails is the raw form input a visitor submits when booking.
type VisitorDetails struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

func (v VisitorDetails) Validate() error {
	if strings.TrimSpace(v.Name) == "" {
		return &ValidationError{Field: "name", Reason: "name is required"}
	}
	email := strings.TrimSpace(v.Email)
	if email == "" {
		return &ValidationError{Field: "email", Reason: "email is required"}
	}
	if !strings.Contains(email, "@") || strings.HasPrefix(email, "@") || strings.HasSuffix(email, "@") {
		return &ValidationError{Field: "email", Reason: "email looks malformed"}
	}
	if strings.TrimSpace(v.Phone) == "" {
		return &ValidationError{Field: "phone", Reason: "phone is required"}
	}
	return nil
}
