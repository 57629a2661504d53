package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"openhouse/internal/export"
	"openhouse/internal/metrics"
	"openhouse/internal/models"
)

// handleSlots serves the grouped availability view the booking page renders.
func (s *HTTPServer) handleSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}
	metrics.IncHTTP("slots")

	groups := s.slots.ByDate()
	writeJSON(w, http.StatusOK, map[string]any{"dates": groups})
}

// handleBook is POST /api/v1/slots/{id}/book.
func (s *HTTPServer) handleBook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}
	metrics.IncHTTP("book")

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/slots/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "book" {
		writeError(w, http.StatusNotFound, "not_found", "unknown path")
		return
	}
	slotID := parts[0]

	if !s.limiter.allow(r) {
		writeError(w, http.StatusTooManyRequests, "rate_limited", "too many booking attempts, slow down")
		return
	}

	var visitor models.VisitorDetails
	if err := json.NewDecoder(r.Body).Decode(&visitor); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "request body is not valid JSON")
		return
	}

	booking, err := s.bookings.AttemptBooking(r.Context(), slotID, visitor)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, map[string]any{"booking": booking})
	case errors.Is(err, models.ErrSlotTaken):
		writeError(w, http.StatusConflict, "already_booked", "this slot was just booked by someone else, pick another")
	case errors.Is(err, models.ErrSlotNotFound):
		writeError(w, http.StatusGone, "slot_gone", "this slot no longer exists")
	case models.IsValidation(err):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	default:
		s.logger.Error().Err(err).Str("slot_id", slotID).Msg("booking attempt failed")
		writeError(w, http.StatusServiceUnavailable, "backend_unavailable", "could not reach the booking store, please retry")
	}
}

// handlePreview is POST /api/v1/admin/slots/preview. It generates candidates
// without persisting anything.
func (s *HTTPServer) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}
	metrics.IncHTTP("admin_preview")

	var cfg models.SlotConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "request body is not valid JSON")
		return
	}

	preview, err := s.slots.PreviewSlots(r.Context(), cfg)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, preview)
	case errors.Is(err, models.ErrEmptyWindow):
		writeError(w, http.StatusUnprocessableEntity, "empty_window", "the window fits no slots of that length")
	case models.IsValidation(err):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	default:
		s.logger.Error().Err(err).Msg("slot preview failed")
		writeError(w, http.StatusServiceUnavailable, "backend_unavailable", "could not reach the booking store, please retry")
	}
}

type commitRequest struct {
	Candidates []models.Slot `json:"candidates"`
}

// handleAdminSlots commits previewed candidates (POST) or returns the same
// grouped view the public page sees (GET), which the admin panel reuses.
func (s *HTTPServer) handleAdminSlots(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		metrics.IncHTTP("admin_slots")
		writeJSON(w, http.StatusOK, map[string]any{"dates": s.slots.ByDate()})
	case http.MethodPost:
		metrics.IncHTTP("admin_commit")
		var req commitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_json", "request body is not valid JSON")
			return
		}

		result, err := s.slots.CommitSlots(r.Context(), req.Candidates)
		switch {
		case err == nil:
			writeJSON(w, http.StatusCreated, result)
		case errors.Is(err, models.ErrEmptyWindow):
			writeError(w, http.StatusUnprocessableEntity, "empty_window", "nothing to commit")
		case models.IsValidation(err):
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
		default:
			s.logger.Error().Err(err).Msg("slot commit failed")
			writeError(w, http.StatusServiceUnavailable, "backend_unavailable", "could not reach the booking store, please retry")
		}
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET or POST")
	}
}

// handleDeleteSlot is DELETE /api/v1/admin/slots/{id}. Deleting an absent
// slot succeeds with a zero cascade count.
func (s *HTTPServer) handleDeleteSlot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use DELETE")
		return
	}
	metrics.IncHTTP("admin_delete_slot")

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/admin/slots/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not_found", "unknown path")
		return
	}

	cascaded, err := s.slots.DeleteSlot(r.Context(), id)
	if err != nil {
		s.logger.Error().Err(err).Str("slot_id", id).Msg("slot delete failed")
		writeError(w, http.StatusServiceUnavailable, "backend_unavailable", "could not reach the booking store, please retry")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"cascade_deleted": cascaded})
}

// handleBookings serves the paired bookings view for the admin panel.
func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}
	metrics.IncHTTP("admin_bookings")

	writeJSON(w, http.StatusOK, map[string]any{"bookings": s.slots.Bookings()})
}

// handleDeleteBooking is DELETE /api/v1/admin/bookings/{id}. Freeing an
// already-free slot is success, so an absent id returns 204 as well.
func (s *HTTPServer) handleDeleteBooking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use DELETE")
		return
	}
	metrics.IncHTTP("admin_delete_booking")

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/admin/bookings/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not_found", "unknown path")
		return
	}

	if err := s.slots.DeleteBooking(r.Context(), id); err != nil {
		s.logger.Error().Err(err).Str("booking_id", id).Msg("booking delete failed")
		writeError(w, http.StatusServiceUnavailable, "backend_unavailable", "could not reach the booking store, please retry")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleExport streams the bookings workbook.
func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}
	metrics.IncHTTP("admin_export")

	workbook, err := export.BookingsWorkbook(s.slots.Bookings())
	if err != nil {
		s.logger.Error().Err(err).Msg("bookings export failed")
		writeError(w, http.StatusInternalServerError, "export_failed", "could not build the workbook")
		return
	}
	defer workbook.Close()

	filename := fmt.Sprintf("bookings-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := workbook.Write(w); err != nil {
		s.logger.Error().Err(err).Msg("bookings export write failed")
	}
}

// handleInfo summarizes the deployment for the admin panel header: counts,
// the shareable booking link, and which backend is in play.
func (s *HTTPServer) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}
	metrics.IncHTTP("admin_info")

	slotCount, bookingCount := s.slots.Totals()
	bookingLink := s.cfg.Server.PublicURL
	if bookingLink != "" {
		bookingLink = strings.TrimRight(bookingLink, "/") + "/book"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"slot_count":    slotCount,
		"booking_count": bookingCount,
		"booking_link":  bookingLink,
		"database":      s.cfg.Database.Driver,
		"environment":   s.cfg.App.Environment,
	})
}
