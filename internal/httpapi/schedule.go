package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"roombook/internal/export"
	"roombook/internal/metrics"
)

func (s *HTTPServer) scheduleParams(r *http.Request) (from, to time.Time, roomID, competency string, err error) {
	q := r.URL.Query()
	startStr := q.Get("start_date")
	endStr := q.Get("end_date")
	if startStr == "" || endStr == "" {
		return time.Time{}, time.Time{}, "", "", fmt.Errorf("start_date and end_date are required")
	}

	from, err = parseDate(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, "", "", err
	}
	to, err = parseDate(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, "", "", err
	}

	return from, to, q.Get("room_id"), q.Get("competency"), nil
}

// handleSchedule returns reservations overlapping a range as JSON.
// GET /api/schedule?start_date=...&end_date=...&room_id=...&competency=...
func (s *HTTPServer) handleSchedule(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("schedule")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}

	from, to, roomID, competency, err := s.scheduleParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := s.schedule.Schedule(r.Context(), from, to, roomID, competency)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"schedule": rows})
}

// handleScheduleExport streams the same range as a CSV download.
// GET /api/schedule/export?start_date=...&end_date=...
func (s *HTTPServer) handleScheduleExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("schedule_export")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}

	from, to, roomID, competency, err := s.scheduleParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := s.schedule.Schedule(r.Context(), from, to, roomID, competency)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="schedule_%s_%s.csv"`, from.Format("2006-01-02"), to.Format("2006-01-02")))
	if err := export.WriteScheduleCSV(w, rows); err != nil {
		s.log.Error().Err(err).Msg("csv export failed")
		return
	}
	metrics.IncExportRun("csv")
}
