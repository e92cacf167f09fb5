package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"roombook/internal/metrics"
	"roombook/internal/service"
)

// handleSeries creates a reservation series.
// POST /api/series
func (s *HTTPServer) handleSeries(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("series")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}

	var req service.BookingRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := s.reservations.AddSeries(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// handleSeriesByID reads, replaces or deletes one series.
// GET/PUT/DELETE /api/series/{series_id}
func (s *HTTPServer) handleSeriesByID(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("series_by_id")

	seriesID := strings.TrimPrefix(r.URL.Path, "/api/series/")
	if seriesID == "" || strings.Contains(seriesID, "/") {
		writeError(w, http.StatusBadRequest, "series_id is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		series, reservations, err := s.reservations.GetSeries(r.Context(), seriesID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"series":       series,
			"reservations": reservations,
		})

	case http.MethodPut:
		var req service.BookingRequest
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		result, err := s.reservations.EditSeries(r.Context(), seriesID, &req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)

	case http.MethodDelete:
		if err := s.reservations.DeleteSeries(r.Context(), seriesID); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleReservationByID cancels one occurrence of a series.
// DELETE /api/reservations/{id}
func (s *HTTPServer) handleReservationByID(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reservation_by_id")
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use DELETE")
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/api/reservations/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reservation id must be an integer")
		return
	}

	if err := s.reservations.DeleteOccurrence(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
