// Package store holds each client's read-mostly mirror of the shared slot
// and booking collections. The backing store owns the truth; the mirror is
// replaced wholesale whenever a change notification arrives, and every view
// is re-derived from it on demand.
package store

import (
	"sort"
	"sync"

	"openhouse/internal/models"
)

// SlotStatus is one slot in the grouped-by-date view. Display fields are
// derived on every call, never cached.
type SlotStatus struct {
	Slot         models.Slot `json:"slot"`
	DisplayTime  string      `json:"display_time"`
	Booked       bool        `json:"booked"`
	BookingCount int         `json:"booking_count"`
}

// DateGroup is every slot on one date, times ascending.
type DateGroup struct {
	Date        string       `json:"date"`
	DisplayDate string       `json:"display_date"`
	Slots       []SlotStatus `json:"slots"`
}

// BookingView pairs a booking with the slot it references.
type BookingView struct {
	Booking     models.Booking `json:"booking"`
	Slot        models.Slot    `json:"slot"`
	DisplayDate string         `json:"display_date"`
	DisplayTime string         `json:"display_time"`
}

// Store is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	slots    []models.Slot
	bookings []models.Booking
}

func New() *Store {
	return &Store{}
}

// ReplaceSlots swaps in a fresh slot snapshot. The snapshot is re-sorted by
// (date, time) so duplicate or out-of-order delivery cannot skew the views.
func (s *Store) ReplaceSlots(slots []models.Slot) {
	copied := append([]models.Slot(nil), slots...)
	sort.Slice(copied, func(i, j int) bool {
		return models.CompareSlots(copied[i], copied[j]) < 0
	})

	s.mu.Lock()
	s.slots = copied
	s.mu.Unlock()
}

// ReplaceBookings swaps in a fresh booking snapshot.
func (s *Store) ReplaceBookings(bookings []models.Booking) {
	copied := append([]models.Booking(nil), bookings...)

	s.mu.Lock()
	s.bookings = copied
	s.mu.Unlock()
}

// Slots returns a copy of the current slot snapshot.
func (s *Store) Slots() []models.Slot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Slot(nil), s.slots...)
}

// Bookings returns a copy of the current booking snapshot.
func (s *Store) Bookings() []models.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Booking(nil), s.bookings...)
}

// SlotByID looks a slot up in the mirror.
func (s *Store) SlotByID(id string) (models.Slot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, slot := range s.slots {
		if slot.ID == id {
			return slot, true
		}
	}
	return models.Slot{}, false
}

// IsBooked reports whether at least one booking references the slot.
func (s *Store) IsBooked(slotID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bookingCountLocked(slotID) > 0
}

// CountOnDate returns how many slots the mirror holds for a date.
func (s *Store) CountOnDate(date string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, slot := range s.slots {
		if slot.Date == date {
			count++
		}
	}
	return count
}

// Totals returns the mirror's slot and booking counts.
func (s *Store) Totals() (slots, bookings int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.slots), len(s.bookings)
}

// ByDate groups slots by date with booking status. Date keys ascend and
// slots within a date ascend by time.
func (s *Store) ByDate() []DateGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byDate := make(map[string][]SlotStatus)
	for _, slot := range s.slots {
		count := s.bookingCountLocked(slot.ID)
		byDate[slot.Date] = append(byDate[slot.Date], SlotStatus{
			Slot:         slot,
			DisplayTime:  slot.Time.Display(),
			Booked:       count > 0,
			BookingCount: count,
		})
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	groups := make([]DateGroup, 0, len(dates))
	for _, date := range dates {
		groups = append(groups, DateGroup{
			Date:        date,
			DisplayDate: models.DisplayDate(date),
			Slots:       byDate[date],
		})
	}

	return groups
}

// PairedBookings returns every booking with its slot, ordered by the slot's
// (date, time). A booking whose slot disappeared under it is skipped; the
// next slot snapshot and its cascade will have removed the booking too.
func (s *Store) PairedBookings() []BookingView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slotsByID := make(map[string]models.Slot, len(s.slots))
	for _, slot := range s.slots {
		slotsByID[slot.ID] = slot
	}

	views := make([]BookingView, 0, len(s.bookings))
	for _, booking := range s.bookings {
		slot, ok := slotsByID[booking.SlotID]
		if !ok {
			continue
		}
		views = append(views, BookingView{
			Booking:     booking,
			Slot:        slot,
			DisplayDate: slot.DisplayDate(),
			DisplayTime: slot.Time.Display(),
		})
	}

	sort.Slice(views, func(i, j int) bool {
		if c := models.CompareSlots(views[i].Slot, views[j].Slot); c != 0 {
			return c < 0
		}
		return views[i].Booking.BookedAt.Before(views[j].Booking.BookedAt)
	})

	return views
}

// bookingCountLocked counts active bookings for a slot. Callers hold s.mu.
func (s *Store) bookingCountLocked(slotID string) int {
	count := 0
	for _, booking := range s.bookings {
		if booking.SlotID == slotID {
			count++
		}
	}
	return count
}
