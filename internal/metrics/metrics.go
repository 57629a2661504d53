package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "openhouse",
			Name:      "booking_attempts_total",
			Help:      "Booking attempts by outcome.",
		},
		[]string{"outcome"},
	)

	slotsCommitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "openhouse",
			Name:      "slots_committed_total",
			Help:      "Slots committed by the administrator.",
		},
	)

	bookingsCascaded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "openhouse",
			Name:      "bookings_cascade_deleted_total",
			Help:      "Bookings removed because their slot was deleted.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "openhouse",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)
)

// Outcome labels for booking attempts.
const (
	OutcomeAccepted      = "accepted"
	OutcomeAlreadyBooked = "already_booked"
	OutcomeSlotGone      = "slot_gone"
	OutcomeInvalid       = "invalid"
	OutcomeBackendError  = "backend_error"
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingAttempts, slotsCommitted, bookingsCascaded, httpRequests)
	})
}

// IncBookingAttempt increments the attempt counter for an outcome label.
func IncBookingAttempt(outcome string) {
	bookingAttempts.WithLabelValues(outcome).Inc()
}

// AddSlotsCommitted records a committed batch.
func AddSlotsCommitted(n int) {
	slotsCommitted.Add(float64(n))
}

// AddBookingsCascaded records bookings removed by a slot delete.
func AddBookingsCascaded(n int) {
	bookingsCascaded.Add(float64(n))
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}
