package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"openhouse/internal/domain"
	"openhouse/internal/events"
	"openhouse/internal/models"
	"openhouse/internal/notifier"
	"openhouse/internal/repository"
	"openhouse/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	backend  domain.Backend
	store    *store.Store
	bus      *events.EventBus
	notifier *notifier.LoopbackNotifier
	slots    *SlotService
	bookings *BookingService
}

func newFixture(t *testing.T, backend domain.Backend) *fixture {
	t.Helper()
	logger := zerolog.New(zerolog.NewConsoleWriter())
	st := store.New()
	bus := events.NewEventBus()
	loopback := notifier.NewLoopbackNotifier()

	f := &fixture{
		backend:  backend,
		store:    st,
		bus:      bus,
		notifier: loopback,
		slots:    NewSlotService(backend, st, bus, loopback, &logger),
		bookings: NewBookingService(backend, st, bus, loopback, &logger),
	}
	require.NoError(t, f.slots.RefreshAll(context.Background()))
	return f
}

func weekdayConfig() models.SlotConfig {
	return models.SlotConfig{
		Date:       "2024-01-02",
		StartTime:  models.TimeOfDay{Hour: 9},
		EndTime:    models.TimeOfDay{Hour: 10},
		SlotLength: 30,
	}
}

func visitor() models.VisitorDetails {
	return models.VisitorDetails{Name: "Ann Visitor", Email: "ann@example.com", Phone: "555-0101"}
}

func TestPreviewCommitBook(t *testing.T) {
	f := newFixture(t, repository.NewMemoryBackend())
	ctx := context.Background()

	preview, err := f.slots.PreviewSlots(ctx, weekdayConfig())
	require.NoError(t, err)
	require.Len(t, preview.Candidates, 2)
	assert.Zero(t, preview.ExistingCount)
	assert.Equal(t, models.TimeOfDay{Hour: 9}, preview.Candidates[0].Time)
	assert.Equal(t, models.TimeOfDay{Hour: 9, Minute: 30}, preview.Candidates[1].Time)

	// Preview persists nothing.
	slotCount, _ := f.slots.Totals()
	assert.Zero(t, slotCount)

	result, err := f.slots.CommitSlots(ctx, preview.Candidates)
	require.NoError(t, err)
	require.Len(t, result.Inserted, 2)
	assert.Zero(t, result.ExistingCount)
	for _, slot := range result.Inserted {
		assert.NotEmpty(t, slot.ID)
	}

	// The mirror caught up without an explicit refresh.
	slotCount, _ = f.slots.Totals()
	assert.Equal(t, 2, slotCount)

	target := result.Inserted[0]
	booking, err := f.bookings.AttemptBooking(ctx, target.ID, visitor())
	require.NoError(t, err)
	assert.NotEmpty(t, booking.ID)
	assert.Equal(t, target.ID, booking.SlotID)

	// A second attempt on the same slot loses.
	_, err = f.bookings.AttemptBooking(ctx, target.ID, visitor())
	assert.ErrorIs(t, err, models.ErrSlotTaken)

	groups := f.slots.ByDate()
	require.Len(t, groups, 1)
	assert.True(t, groups[0].Slots[0].Booked)
	assert.False(t, groups[0].Slots[1].Booked)
}

func TestPreviewWarnsAboutExistingSlots(t *testing.T) {
	f := newFixture(t, repository.NewMemoryBackend())
	ctx := context.Background()

	first, err := f.slots.PreviewSlots(ctx, weekdayConfig())
	require.NoError(t, err)
	_, err = f.slots.CommitSlots(ctx, first.Candidates)
	require.NoError(t, err)

	// Same date again: duplicates are allowed but flagged.
	second, err := f.slots.PreviewSlots(ctx, weekdayConfig())
	require.NoError(t, err)
	assert.Equal(t, 2, second.ExistingCount)

	result, err := f.slots.CommitSlots(ctx, second.Candidates)
	require.NoError(t, err)
	assert.Equal(t, 2, result.ExistingCount)

	slotCount, _ := f.slots.Totals()
	assert.Equal(t, 4, slotCount)
}

func TestCommitRejectsEmptyAndInvalid(t *testing.T) {
	f := newFixture(t, repository.NewMemoryBackend())
	ctx := context.Background()

	_, err := f.slots.CommitSlots(ctx, nil)
	assert.ErrorIs(t, err, models.ErrEmptyWindow)

	_, err = f.slots.CommitSlots(ctx, []models.Slot{{Date: "bogus", SlotLength: 30}})
	assert.True(t, models.IsValidation(err))
}

func TestDeleteSlotCascadesAndFreesNothingTwice(t *testing.T) {
	f := newFixture(t, repository.NewMemoryBackend())
	ctx := context.Background()

	preview, err := f.slots.PreviewSlots(ctx, weekdayConfig())
	require.NoError(t, err)
	result, err := f.slots.CommitSlots(ctx, preview.Candidates)
	require.NoError(t, err)

	target := result.Inserted[0]
	_, err = f.bookings.AttemptBooking(ctx, target.ID, visitor())
	require.NoError(t, err)

	cascaded, err := f.slots.DeleteSlot(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cascaded)

	slotCount, bookingCount := f.slots.Totals()
	assert.Equal(t, 1, slotCount)
	assert.Zero(t, bookingCount)

	// Booking the deleted slot now reports it gone.
	_, err = f.bookings.AttemptBooking(ctx, target.ID, visitor())
	assert.ErrorIs(t, err, models.ErrSlotNotFound)

	cascaded, err = f.slots.DeleteSlot(ctx, target.ID)
	require.NoError(t, err)
	assert.Zero(t, cascaded)
}

func TestDeleteBookingIsIdempotent(t *testing.T) {
	f := newFixture(t, repository.NewMemoryBackend())
	ctx := context.Background()

	preview, err := f.slots.PreviewSlots(ctx, weekdayConfig())
	require.NoError(t, err)
	result, err := f.slots.CommitSlots(ctx, preview.Candidates)
	require.NoError(t, err)

	target := result.Inserted[0]
	booking, err := f.bookings.AttemptBooking(ctx, target.ID, visitor())
	require.NoError(t, err)

	require.NoError(t, f.slots.DeleteBooking(ctx, booking.ID))
	// Again: the booking is already gone, which is the requested end state.
	require.NoError(t, f.slots.DeleteBooking(ctx, booking.ID))

	// The slot is bookable again.
	_, err = f.bookings.AttemptBooking(ctx, target.ID, visitor())
	assert.NoError(t, err)
}

func TestAttemptBookingValidatesVisitor(t *testing.T) {
	f := newFixture(t, repository.NewMemoryBackend())

	_, err := f.bookings.AttemptBooking(context.Background(), "whatever", models.VisitorDetails{})
	assert.True(t, models.IsValidation(err))
}

// stalePrecheckBackend simulates another instance winning the race after this
// instance's mirror said the slot was free.
type stalePrecheckBackend struct {
	domain.Backend
}

func (b *stalePrecheckBackend) InsertBooking(ctx context.Context, booking *models.Booking) error {
	return models.ErrSlotTaken
}

func TestBackendOverrulesStaleMirror(t *testing.T) {
	memory := repository.NewMemoryBackend()
	inserted, err := memory.InsertSlots(context.Background(), []models.Slot{{
		Date: "2024-01-02", Time: models.TimeOfDay{Hour: 9}, SlotLength: 30,
	}})
	require.NoError(t, err)

	f := newFixture(t, &stalePrecheckBackend{Backend: memory})

	// The mirror sees the slot as free; the backend says otherwise.
	_, err = f.bookings.AttemptBooking(context.Background(), inserted[0].ID, visitor())
	assert.ErrorIs(t, err, models.ErrSlotTaken)
}

// failingBackend refuses booking inserts with a transport-style error.
type failingBackend struct {
	domain.Backend
}

var errBackendDown = errors.New("connection refused")

func (b *failingBackend) InsertBooking(ctx context.Context, booking *models.Booking) error {
	return errBackendDown
}

func TestBackendFailureLeavesMirrorIntact(t *testing.T) {
	memory := repository.NewMemoryBackend()
	inserted, err := memory.InsertSlots(context.Background(), []models.Slot{{
		Date: "2024-01-02", Time: models.TimeOfDay{Hour: 9}, SlotLength: 30,
	}})
	require.NoError(t, err)

	f := newFixture(t, &failingBackend{Backend: memory})
	slotsBefore, bookingsBefore := f.slots.Totals()

	_, err = f.bookings.AttemptBooking(context.Background(), inserted[0].ID, visitor())
	require.Error(t, err)
	assert.ErrorIs(t, err, errBackendDown)
	assert.False(t, errors.Is(err, models.ErrSlotTaken))
	assert.False(t, errors.Is(err, models.ErrSlotNotFound))

	slotsAfter, bookingsAfter := f.slots.Totals()
	assert.Equal(t, slotsBefore, slotsAfter)
	assert.Equal(t, bookingsBefore, bookingsAfter)

	// The failure was transient, not an admission verdict: a retry wins.
	f2 := newFixture(t, memory)
	_, err = f2.bookings.AttemptBooking(context.Background(), inserted[0].ID, visitor())
	assert.NoError(t, err)
}

func TestObserversConvergeThroughNotifier(t *testing.T) {
	backend := repository.NewMemoryBackend()
	loopback := notifier.NewLoopbackNotifier()
	logger := zerolog.New(zerolog.NewConsoleWriter())
	ctx := context.Background()

	makeObserver := func() (*SlotService, *BookingService) {
		st := store.New()
		slots := NewSlotService(backend, st, events.NewEventBus(), loopback, &logger)
		bookings := NewBookingService(backend, st, events.NewEventBus(), loopback, &logger)
		require.NoError(t, slots.RefreshAll(ctx))
		_, err := loopback.Subscribe(ctx,
			func() { _ = slots.RefreshSlots(context.Background()) },
			func() { _ = slots.RefreshBookings(context.Background()) },
		)
		require.NoError(t, err)
		return slots, bookings
	}

	adminSlots, _ := makeObserver()
	visitorSlots, visitorBookings := makeObserver()

	preview, err := adminSlots.PreviewSlots(ctx, weekdayConfig())
	require.NoError(t, err)
	result, err := adminSlots.CommitSlots(ctx, preview.Candidates)
	require.NoError(t, err)

	// The visitor's mirror learned about the commit through the notifier.
	visitorCount, _ := visitorSlots.Totals()
	assert.Equal(t, 2, visitorCount)

	_, err = visitorBookings.AttemptBooking(ctx, result.Inserted[0].ID, visitor())
	require.NoError(t, err)

	// And the admin's mirror sees the booking.
	groups := adminSlots.ByDate()
	require.Len(t, groups, 1)
	assert.True(t, groups[0].Slots[0].Booked)
}

func TestSeedDemoSlotsOnlyOnEmptyBackend(t *testing.T) {
	f := newFixture(t, repository.NewMemoryBackend())
	ctx := context.Background()

	require.NoError(t, f.slots.SeedDemoSlots(ctx))
	seeded, _ := f.slots.Totals()
	assert.Equal(t, 4, seeded)

	// A second run must not pile more samples on.
	require.NoError(t, f.slots.SeedDemoSlots(ctx))
	again, _ := f.slots.Totals()
	assert.Equal(t, seeded, again)
}

func TestBookingEventCarriesDisplayFields(t *testing.T) {
	f := newFixture(t, repository.NewMemoryBackend())
	ctx := context.Background()

	var payloads []events.BookingEventPayload
	f.bus.Subscribe(events.EventBookingCreated, func(event *events.Event) error {
		var payload events.BookingEventPayload
		require.NoError(t, json.Unmarshal(event.Payload, &payload))
		payloads = append(payloads, payload)
		return nil
	})

	preview, err := f.slots.PreviewSlots(ctx, weekdayConfig())
	require.NoError(t, err)
	result, err := f.slots.CommitSlots(ctx, preview.Candidates)
	require.NoError(t, err)

	_, err = f.bookings.AttemptBooking(ctx, result.Inserted[0].ID, visitor())
	require.NoError(t, err)

	require.Len(t, payloads, 1)
	assert.Equal(t, "Ann Visitor", payloads[0].VisitorName)
	assert.Equal(t, "2024-01-02", payloads[0].Date)
	assert.Equal(t, "9:00 AM", payloads[0].Time)
}
