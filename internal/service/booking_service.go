package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"openhouse/internal/domain"
	"openhouse/internal/events"
	"openhouse/internal/metrics"
	"openhouse/internal/models"
	"openhouse/internal/store"

	"github.com/rs/zerolog"
)

// BookingService decides whether a visitor's booking attempt may proceed.
// The decision is optimistic and two-phase: a pre-check against the local
// mirror rejects obviously dead attempts without a round trip, then the
// backend's own uniqueness enforcement arbitrates the race. The pre-check
// narrows the race window; it never closes it.
type BookingService struct {
	backend  domain.Backend
	store    *store.Store
	eventBus domain.EventPublisher
	notifier domain.ChangeNotifier
	logger   *zerolog.Logger
}

func NewBookingService(backend domain.Backend, st *store.Store, eventBus domain.EventPublisher, notifier domain.ChangeNotifier, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		backend:  backend,
		store:    st,
		eventBus: eventBus,
		notifier: notifier,
		logger:   logger,
	}
}

// AttemptBooking books a slot for a visitor. Outcomes are distinguished by
// error value: nil with a booking on acceptance, models.ErrSlotTaken when
// the race was lost, models.ErrSlotNotFound when the slot is gone, a
// ValidationError for bad input, and anything else is a retryable backend
// failure that left no partial state behind.
func (s *BookingService) AttemptBooking(ctx context.Context, slotID string, visitor models.VisitorDetails) (*models.Booking, error) {
	if err := visitor.Validate(); err != nil {
		metrics.IncBookingAttempt(metrics.OutcomeInvalid)
		return nil, err
	}

	// Phase 1: local pre-check. Purely a fast path; the mirror may be
	// stale in either direction, and the backend has the final word.
	slot, known := s.store.SlotByID(slotID)
	if !known {
		metrics.IncBookingAttempt(metrics.OutcomeSlotGone)
		return nil, models.ErrSlotNotFound
	}
	if s.store.IsBooked(slotID) {
		metrics.IncBookingAttempt(metrics.OutcomeAlreadyBooked)
		return nil, models.ErrSlotTaken
	}

	booking := &models.Booking{
		SlotID:   slotID,
		Name:     strings.TrimSpace(visitor.Name),
		Email:    strings.TrimSpace(visitor.Email),
		Phone:    strings.TrimSpace(visitor.Phone),
		Notes:    strings.TrimSpace(visitor.Notes),
		BookedAt: time.Now(),
	}

	// Phase 2: atomic create against the authoritative store.
	if err := s.backend.InsertBooking(ctx, booking); err != nil {
		switch {
		case errors.Is(err, models.ErrSlotTaken):
			// Lost the race; pull the snapshot that proves it so the
			// next pre-check is current.
			s.refreshBookings(ctx)
			metrics.IncBookingAttempt(metrics.OutcomeAlreadyBooked)
			return nil, models.ErrSlotTaken
		case errors.Is(err, models.ErrSlotNotFound):
			s.refreshSlots(ctx)
			metrics.IncBookingAttempt(metrics.OutcomeSlotGone)
			return nil, models.ErrSlotNotFound
		default:
			// Transport or availability failure: nothing was persisted,
			// the mirror keeps its last known-good snapshot, and the
			// visitor may simply retry.
			metrics.IncBookingAttempt(metrics.OutcomeBackendError)
			return nil, fmt.Errorf("booking attempt failed: %w", err)
		}
	}

	metrics.IncBookingAttempt(metrics.OutcomeAccepted)
	s.publishCreated(booking, slot)

	s.refreshBookings(ctx)
	if err := s.notifier.BookingsChanged(ctx); err != nil {
		s.logger.Error().Err(err).Msg("bookings-changed notification failed")
	}

	s.logger.Info().Str("booking_id", booking.ID).Str("slot_id", slotID).Msg("booking accepted")
	return booking, nil
}

func (s *BookingService) publishCreated(booking *models.Booking, slot models.Slot) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:   booking.ID,
		SlotID:      booking.SlotID,
		VisitorName: booking.Name,
		Email:       booking.Email,
		Phone:       booking.Phone,
		Date:        slot.Date,
		Time:        slot.Time.Display(),
		Notes:       booking.Notes,
	}

	if err := s.eventBus.PublishJSON(events.EventBookingCreated, payload); err != nil {
		s.logger.Error().Err(err).Str("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) refreshBookings(ctx context.Context) {
	bookings, err := s.backend.ListBookings(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("booking refresh failed")
		return
	}
	s.store.ReplaceBookings(bookings)
}

func (s *BookingService) refreshSlots(ctx context.Context) {
	slots, err := s.backend.ListSlots(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("slot refresh failed")
		return
	}
	s.store.ReplaceSlots(slots)
}
