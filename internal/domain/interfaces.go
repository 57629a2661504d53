package domain

import (
	"context"

	"openhouse/internal/models"
)

// Backend is the authoritative persistence collaborator. Both the SQLite
// store and the in-memory store implement it with identical semantics; in
// particular InsertBooking must be atomic and enforce at-most-one booking
// per slot, returning models.ErrSlotTaken on a lost race. The service layer
// only hints at admission; the Backend decides it.
type Backend interface {
	ListSlots(ctx context.Context) ([]models.Slot, error)
	InsertSlots(ctx context.Context, slots []models.Slot) ([]models.Slot, error)
	// DeleteSlot removes a slot and every booking referencing it, and
	// reports how many bookings were cascade-deleted. Deleting an absent
	// slot is a no-op success with a zero count.
	DeleteSlot(ctx context.Context, id string) (int, error)
	CountSlotsOnDate(ctx context.Context, date string) (int, error)

	ListBookings(ctx context.Context) ([]models.Booking, error)
	InsertBooking(ctx context.Context, booking *models.Booking) error
	DeleteBooking(ctx context.Context, id string) error

	Close() error
}

// EventPublisher fans domain events out to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// ChangeNotifier carries "something changed, re-fetch" signals between
// observers sharing one backend. Signals have no payload; receivers reload
// full snapshots rather than patching deltas, so duplicated or reordered
// delivery is harmless.
type ChangeNotifier interface {
	SlotsChanged(ctx context.Context) error
	BookingsChanged(ctx context.Context) error
	// Subscribe registers callbacks and returns an unsubscribe func for
	// clean teardown.
	Subscribe(ctx context.Context, onSlotsChanged, onBookingsChanged func()) (func(), error)
}
