package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"openhouse/internal/domain"
	"openhouse/internal/events"
	"openhouse/internal/metrics"
	"openhouse/internal/models"
	"openhouse/internal/schedule"
	"openhouse/internal/store"

	"github.com/rs/zerolog"
)

// SlotService owns the administrator's slot lifecycle: preview, commit,
// delete, and keeping the local mirror in step with the backend.
type SlotService struct {
	backend  domain.Backend
	store    *store.Store
	eventBus domain.EventPublisher
	notifier domain.ChangeNotifier
	logger   *zerolog.Logger
}

func NewSlotService(backend domain.Backend, st *store.Store, eventBus domain.EventPublisher, notifier domain.ChangeNotifier, logger *zerolog.Logger) *SlotService {
	return &SlotService{
		backend:  backend,
		store:    st,
		eventBus: eventBus,
		notifier: notifier,
		logger:   logger,
	}
}

// Preview is a generation run the administrator has not yet confirmed.
// ExistingCount warns about slots already present on the date; duplicates
// are allowed, but only deliberately.
type Preview struct {
	Candidates    []models.Slot `json:"candidates"`
	ExistingCount int           `json:"existing_count"`
}

// CommitResult reports a confirmed commit.
type CommitResult struct {
	Inserted      []models.Slot `json:"inserted"`
	ExistingCount int           `json:"existing_count"`
}

// PreviewSlots generates candidates for a day without touching the backend's
// slot collection.
func (s *SlotService) PreviewSlots(ctx context.Context, cfg models.SlotConfig) (*Preview, error) {
	candidates, err := schedule.Generate(cfg)
	if err != nil {
		return nil, err
	}

	existing, err := s.backend.CountSlotsOnDate(ctx, cfg.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to count existing slots: %w", err)
	}

	return &Preview{Candidates: candidates, ExistingCount: existing}, nil
}

// CommitSlots persists confirmed candidates, assigns ids, and tells every
// observer to refresh.
func (s *SlotService) CommitSlots(ctx context.Context, candidates []models.Slot) (*CommitResult, error) {
	if len(candidates) == 0 {
		return nil, models.ErrEmptyWindow
	}

	date := candidates[0].Date
	for _, candidate := range candidates {
		if !models.ValidDate(candidate.Date) {
			return nil, &models.ValidationError{Field: "date", Reason: "expected YYYY-MM-DD"}
		}
		if candidate.SlotLength <= 0 {
			return nil, &models.ValidationError{Field: "slot_length", Reason: "must be a positive number of minutes"}
		}
	}

	existing, err := s.backend.CountSlotsOnDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to count existing slots: %w", err)
	}

	inserted, err := s.backend.InsertSlots(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to commit slots: %w", err)
	}

	metrics.AddSlotsCommitted(len(inserted))
	s.publishSlotEvent(events.EventSlotsCommitted, events.SlotEventPayload{Date: date, SlotCount: len(inserted)})
	s.afterSlotsMutation(ctx)

	s.logger.Info().Str("date", date).Int("count", len(inserted)).Int("existing", existing).Msg("slots committed")
	return &CommitResult{Inserted: inserted, ExistingCount: existing}, nil
}

// DeleteSlot removes a slot, cascades its bookings, and reports the cascade
// count. Deleting an already-absent slot succeeds with a zero count.
func (s *SlotService) DeleteSlot(ctx context.Context, id string) (int, error) {
	cascaded, err := s.backend.DeleteSlot(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete slot: %w", err)
	}

	metrics.AddBookingsCascaded(cascaded)
	s.publishSlotEvent(events.EventSlotDeleted, events.SlotEventPayload{SlotID: id, CascadeCount: cascaded})

	s.afterSlotsMutation(ctx)
	if cascaded > 0 {
		s.afterBookingsMutation(ctx)
	}

	s.logger.Info().Str("slot_id", id).Int("cascaded", cascaded).Msg("slot deleted")
	return cascaded, nil
}

// DeleteBooking frees a slot. A missing booking id already matches the
// intended end state and is treated as success.
func (s *SlotService) DeleteBooking(ctx context.Context, id string) error {
	err := s.backend.DeleteBooking(ctx, id)
	if errors.Is(err, models.ErrBookingNotFound) {
		s.logger.Debug().Str("booking_id", id).Msg("booking already gone")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	s.publishBookingEvent(events.EventBookingDeleted, events.BookingEventPayload{BookingID: id})
	s.afterBookingsMutation(ctx)

	s.logger.Info().Str("booking_id", id).Msg("booking deleted")
	return nil
}

// SeedDemoSlots creates a handful of sample slots on an empty backend so a
// fresh install has something to show. No-op when any slot exists.
func (s *SlotService) SeedDemoSlots(ctx context.Context) error {
	slots, err := s.backend.ListSlots(ctx)
	if err != nil {
		return fmt.Errorf("failed to inspect backend before seeding: %w", err)
	}
	if len(slots) > 0 {
		return nil
	}

	var seed []models.Slot
	for dayOffset := 1; dayOffset <= 2; dayOffset++ {
		date := time.Now().AddDate(0, 0, dayOffset).Format(models.DateLayout)
		for _, hour := range []int{10, 14} {
			seed = append(seed, models.Slot{
				Date:       date,
				Time:       models.TimeOfDay{Hour: hour},
				SlotLength: 30,
			})
		}
	}

	if _, err := s.backend.InsertSlots(ctx, seed); err != nil {
		return fmt.Errorf("failed to seed demo slots: %w", err)
	}

	s.afterSlotsMutation(ctx)
	s.logger.Info().Int("count", len(seed)).Msg("seeded demo slots")
	return nil
}

// RefreshSlots reloads the slot snapshot into the mirror.
func (s *SlotService) RefreshSlots(ctx context.Context) error {
	slots, err := s.backend.ListSlots(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh slots: %w", err)
	}
	s.store.ReplaceSlots(slots)
	return nil
}

// RefreshBookings reloads the booking snapshot into the mirror.
func (s *SlotService) RefreshBookings(ctx context.Context) error {
	bookings, err := s.backend.ListBookings(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh bookings: %w", err)
	}
	s.store.ReplaceBookings(bookings)
	return nil
}

// RefreshAll loads both snapshots; used at startup and on reconnect.
func (s *SlotService) RefreshAll(ctx context.Context) error {
	if err := s.RefreshSlots(ctx); err != nil {
		return err
	}
	return s.RefreshBookings(ctx)
}

// ByDate returns the grouped availability view from the mirror.
func (s *SlotService) ByDate() []store.DateGroup {
	return s.store.ByDate()
}

// Bookings returns the paired bookings view from the mirror.
func (s *SlotService) Bookings() []store.BookingView {
	return s.store.PairedBookings()
}

// Totals returns mirror counts for the admin info endpoint.
func (s *SlotService) Totals() (slots, bookings int) {
	return s.store.Totals()
}

// afterSlotsMutation refreshes this client's mirror immediately (mutations
// within one client apply in order) and signals every other observer.
func (s *SlotService) afterSlotsMutation(ctx context.Context) {
	if err := s.RefreshSlots(ctx); err != nil {
		s.logger.Error().Err(err).Msg("slot refresh after mutation failed")
	}
	if err := s.notifier.SlotsChanged(ctx); err != nil {
		s.logger.Error().Err(err).Msg("slots-changed notification failed")
	}
}

func (s *SlotService) afterBookingsMutation(ctx context.Context) {
	if err := s.RefreshBookings(ctx); err != nil {
		s.logger.Error().Err(err).Msg("booking refresh after mutation failed")
	}
	if err := s.notifier.BookingsChanged(ctx); err != nil {
		s.logger.Error().Err(err).Msg("bookings-changed notification failed")
	}
}

func (s *SlotService) publishSlotEvent(eventType string, payload events.SlotEventPayload) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Msg("publish event error")
	}
}

func (s *SlotService) publishBookingEvent(eventType string, payload events.BookingEventPayload) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Msg("publish event error")
	}
}
