// Package httpapi is the JSON surface of the scheduler.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"roombook/internal/service"
)

// Options configure the HTTP server.
type Options struct {
	Port           int
	APIKey         string
	RateLimitRPS   float64
	RateLimitBurst int
}

// HTTPServer serves the scheduler API.
type HTTPServer struct {
	reservations *service.ReservationService
	rooms        *service.RoomService
	recommender  *service.Recommender
	schedule     *service.ScheduleService
	log          *zerolog.Logger

	apiKey  string
	limiter *rate.Limiter
	server  *http.Server
}

// NewHTTPServer wires handlers and middleware. An empty APIKey disables auth.
func NewHTTPServer(opts Options, reservations *service.ReservationService, rooms *service.RoomService, recommender *service.Recommender, schedule *service.ScheduleService, log *zerolog.Logger) *HTTPServer {
	if opts.RateLimitRPS <= 0 {
		opts.RateLimitRPS = 20
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = 40
	}

	s := &HTTPServer{
		reservations: reservations,
		rooms:        rooms,
		recommender:  recommender,
		schedule:     schedule,
		log:          log,
		apiKey:       opts.APIKey,
		limiter:      rate.NewLimiter(rate.Limit(opts.RateLimitRPS), opts.RateLimitBurst),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/series", s.handleSeries)
	mux.HandleFunc("/api/series/", s.handleSeriesByID)
	mux.HandleFunc("/api/reservations/", s.handleReservationByID)
	mux.HandleFunc("/api/rooms", s.handleRooms)
	mux.HandleFunc("/api/rooms/", s.handleRoomByID)
	mux.HandleFunc("/api/recommend", s.handleRecommend)
	mux.HandleFunc("/api/schedule", s.handleSchedule)
	mux.HandleFunc("/api/schedule/export", s.handleScheduleExport)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           s.middleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(ctxShutdown)
	}()

	s.log.Info().Str("addr", s.server.Addr).Msg("http api listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		if s.apiKey != "" && r.Header.Get("X-API-Key") != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid api key")
			return
		}

		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case service.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case service.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case service.IsConflict(err):
		writeError(w, http.StatusConflict, err.Error())
	default:
		var se *service.StoreError
		if errors.As(err, &se) {
			writeError(w, http.StatusInternalServerError, "storage failure")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// parseDate accepts RFC 3339 timestamps and bare YYYY-MM-DD dates.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q; expected RFC 3339 or YYYY-MM-DD", s)
	}
	return t.UTC(), nil
}
