// Package api is the JSON HTTP surface for both clients: the public booking
// page and the admin panel. It serves the derived views and forwards
// mutations to the services; it renders nothing itself.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"openhouse/internal/config"
	"openhouse/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type HTTPServer struct {
	cfg      config.Config
	slots    *service.SlotService
	bookings *service.BookingService
	limiter  *visitorLimiter
	logger   *zerolog.Logger
	server   *http.Server
}

func NewHTTPServer(cfg config.Config, slots *service.SlotService, bookings *service.BookingService, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:      cfg,
		slots:    slots,
		bookings: bookings,
		limiter:  newVisitorLimiter(cfg.Booking.RateLimitRPS, cfg.Booking.RateLimitBurst),
		logger:   logger,
	}

	mux := http.NewServeMux()

	// Public surface.
	mux.HandleFunc("/api/v1/slots", srv.handleSlots)
	mux.HandleFunc("/api/v1/slots/", srv.handleBook)

	// Admin surface. Admin auth is deliberately absent: the panel is meant
	// to sit behind whatever fronts the deployment.
	mux.HandleFunc("/api/v1/admin/slots/preview", srv.handlePreview)
	mux.HandleFunc("/api/v1/admin/slots", srv.handleAdminSlots)
	mux.HandleFunc("/api/v1/admin/slots/", srv.handleDeleteSlot)
	mux.HandleFunc("/api/v1/admin/bookings", srv.handleBookings)
	mux.HandleFunc("/api/v1/admin/bookings/export", srv.handleExport)
	mux.HandleFunc("/api/v1/admin/bookings/", srv.handleDeleteBooking)
	mux.HandleFunc("/api/v1/admin/info", srv.handleInfo)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Monitoring.PrometheusEnabled {
		mux.Handle("/metrics", promhttp.Handler())
	}

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv.loggingMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, map[string]string{"error_code": code, "error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
