// Package repository provides an in-memory Backend with the same admission
// semantics as the SQLite store. It backs the standalone single-process mode
// (the equivalent of running the scheduler off local browser storage) and
// doubles as the service-layer test fixture.
package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"openhouse/internal/models"

	"github.com/google/uuid"
)

type MemoryBackend struct {
	mu       sync.Mutex
	slots    map[string]models.Slot
	bookings map[string]models.Booking
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		slots:    make(map[string]models.Slot),
		bookings: make(map[string]models.Booking),
	}
}

func (m *MemoryBackend) ListSlots(ctx context.Context) ([]models.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	slots := make([]models.Slot, 0, len(m.slots))
	for _, slot := range m.slots {
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool {
		return models.CompareSlots(slots[i], slots[j]) < 0
	})

	return slots, nil
}

func (m *MemoryBackend) InsertSlots(ctx context.Context, slots []models.Slot) ([]models.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	inserted := make([]models.Slot, 0, len(slots))
	for _, slot := range slots {
		slot.ID = uuid.NewString()
		slot.CreatedAt = now
		m.slots[slot.ID] = slot
		inserted = append(inserted, slot)
	}

	return inserted, nil
}

func (m *MemoryBackend) DeleteSlot(ctx context.Context, id string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.slots, id)

	cascaded := 0
	for bookingID, booking := range m.bookings {
		if booking.SlotID == id {
			delete(m.bookings, bookingID)
			cascaded++
		}
	}

	return cascaded, nil
}

func (m *MemoryBackend) CountSlotsOnDate(ctx context.Context, date string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, slot := range m.slots {
		if slot.Date == date {
			count++
		}
	}
	return count, nil
}

func (m *MemoryBackend) ListBookings(ctx context.Context) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	bookings := make([]models.Booking, 0, len(m.bookings))
	for _, booking := range m.bookings {
		bookings = append(bookings, booking)
	}
	sort.Slice(bookings, func(i, j int) bool {
		if !bookings[i].BookedAt.Equal(bookings[j].BookedAt) {
			return bookings[i].BookedAt.Before(bookings[j].BookedAt)
		}
		return bookings[i].ID < bookings[j].ID
	})

	return bookings, nil
}

// InsertBooking admits at most one booking per slot; the check and the
// insert happen under one lock, mirroring the SQLite unique index.
func (m *MemoryBackend) InsertBooking(ctx context.Context, booking *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.slots[booking.SlotID]; !ok {
		return models.ErrSlotNotFound
	}

	for _, existing := range m.bookings {
		if existing.SlotID == booking.SlotID {
			return models.ErrSlotTaken
		}
	}

	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if booking.BookedAt.IsZero() {
		booking.BookedAt = time.Now()
	}

	m.bookings[booking.ID] = *booking
	return nil
}

func (m *MemoryBackend) DeleteBooking(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bookings[id]; !ok {
		return models.ErrBookingNotFound
	}

	delete(m.bookings, id)
	return nil
}

func (m *MemoryBackend) Close() error {
	return nil
}
