package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"roombook/internal/events"
	"roombook/internal/metrics"
	"roombook/internal/model"
	"roombook/internal/slots"
)

// EventPublisher receives series lifecycle notifications.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// BookingRequest is a request for a weekly reservation series.
// An empty RoomID asks the recommender to pick the room.
type BookingRequest struct {
	RoomID           string    `json:"room_id"`
	TimeStart        time.Time `json:"time_start"`
	TimeEnd          time.Time `json:"time_end"`
	Repeat           int       `json:"repeat"`
	Competency       string    `json:"competency"`
	NumberOfStudents int       `json:"number_of_students"`
}

// SeriesResult reports an accepted upsert. Callers never observe partial
// success; a rejected request writes nothing.
type SeriesResult struct {
	SeriesID     string              `json:"series_id"`
	RoomID       string              `json:"room_id"`
	Reservations []model.Reservation `json:"reservations"`
}

type seriesEvent struct {
	SeriesID string `json:"series_id"`
	RoomID   string `json:"room_id,omitempty"`
	Slots    int    `json:"slots,omitempty"`
}

// ReservationService orchestrates the series upsert protocol:
// expand, detect conflicts, write as one logical unit.
type ReservationService struct {
	store       Store
	detector    *ConflictDetector
	recommender *Recommender
	bus         EventPublisher
	maxRepeat   int
	logger      *zerolog.Logger
}

// NewReservationService wires the upsert protocol. maxRepeat caps the
// repeat count a single request may ask for.
func NewReservationService(store Store, detector *ConflictDetector, recommender *Recommender, bus EventPublisher, maxRepeat int, logger *zerolog.Logger) *ReservationService {
	if maxRepeat < 1 {
		maxRepeat = 52
	}
	return &ReservationService{
		store:       store,
		detector:    detector,
		recommender: recommender,
		bus:         bus,
		maxRepeat:   maxRepeat,
		logger:      logger,
	}
}

func (s *ReservationService) validate(req *BookingRequest) error {
	if !req.TimeStart.Before(req.TimeEnd) {
		return &ValidationError{Field: "time_start", Reason: "must be before time_end"}
	}
	if req.Repeat < 1 {
		return &ValidationError{Field: "repeat", Reason: "must be at least 1"}
	}
	if req.Repeat > s.maxRepeat {
		return &ValidationError{Field: "repeat", Reason: "exceeds the configured maximum"}
	}
	if strings.TrimSpace(req.Competency) == "" {
		return &ValidationError{Field: "competency", Reason: "is required"}
	}
	if req.NumberOfStudents < 1 {
		return &ValidationError{Field: "number_of_students", Reason: "must be at least 1"}
	}
	return nil
}

// resolveRoom returns the target room: the explicitly requested one, checked
// for existence and capacity, or the recommender's top pick over the full
// repeat window.
func (s *ReservationService) resolveRoom(ctx context.Context, req *BookingRequest) (*model.Room, error) {
	if req.RoomID != "" {
		room, err := s.store.GetRoomByID(ctx, req.RoomID)
		if err != nil {
			return nil, mapStoreErr("get room", req.RoomID, "room", req.RoomID, err)
		}
		if !room.Fits(req.NumberOfStudents) {
			return nil, &ValidationError{Field: "number_of_students", Reason: "exceeds the room's capacity"}
		}
		return room, nil
	}

	candidates, err := s.recommender.Recommend(ctx, req.TimeStart, req.TimeEnd, req.Repeat, req.NumberOfStudents)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, &ConflictError{}
	}
	return &candidates[0], nil
}

func buildReservations(seriesID string, room *model.Room, occurrences []model.Interval, req *BookingRequest) []model.Reservation {
	out := make([]model.Reservation, 0, len(occurrences))
	for _, occ := range occurrences {
		out = append(out, model.Reservation{
			SeriesID:         seriesID,
			RoomID:           room.RoomID,
			TimeStart:        occ.Start,
			TimeEnd:          occ.End,
			Competency:       req.Competency,
			NumberOfStudents: req.NumberOfStudents,
		})
	}
	return out
}

// AddSeries creates a new reservation series. On conflict nothing is
// written and a ConflictError is returned.
func (s *ReservationService) AddSeries(ctx context.Context, req *BookingRequest) (*SeriesResult, error) {
	if err := s.validate(req); err != nil {
		metrics.IncSeriesRejected("validation")
		return nil, err
	}

	occurrences, err := slots.Expand(req.TimeStart, req.TimeEnd, req.Repeat)
	if err != nil {
		metrics.IncSeriesRejected("validation")
		return nil, &ValidationError{Field: "repeat", Reason: err.Error()}
	}

	room, err := s.resolveRoom(ctx, req)
	if err != nil {
		if IsConflict(err) {
			metrics.IncSeriesRejected("no_room")
		}
		return nil, err
	}

	conflict, err := s.detector.HasConflict(ctx, "", room.RoomID, occurrences)
	if err != nil {
		return nil, err
	}
	if conflict {
		metrics.IncSeriesRejected("overlap")
		return nil, &ConflictError{RoomID: room.RoomID}
	}

	seriesID := uuid.NewString()
	series := &model.Series{SeriesID: seriesID, Capacity: req.NumberOfStudents, Repetition: req.Repeat}
	reservations := buildReservations(seriesID, room, occurrences, req)

	// The store re-checks overlap inside the write transaction; a lost race
	// with a concurrent add surfaces here as a conflict, not a double booking.
	if err := s.store.CreateSeries(ctx, series, reservations); err != nil {
		mapped := mapStoreErr("create series", room.RoomID, "series", seriesID, err)
		if IsConflict(mapped) {
			metrics.IncSeriesRejected("overlap")
		}
		return nil, mapped
	}

	metrics.IncSeriesCreated()
	s.publish(events.SeriesCreated, seriesEvent{SeriesID: seriesID, RoomID: room.RoomID, Slots: len(reservations)})
	s.logger.Info().
		Str("series_id", seriesID).
		Str("room_id", room.RoomID).
		Int("slots", len(reservations)).
		Msg("series created")

	return &SeriesResult{SeriesID: seriesID, RoomID: room.RoomID, Reservations: reservations}, nil
}

// EditSeries replaces every occurrence of an existing series under the same
// id. The conflict check excludes the series being edited, and the delete
// and re-insert happen in one store transaction, so the series is never
// observable as transiently absent.
func (s *ReservationService) EditSeries(ctx context.Context, seriesID string, req *BookingRequest) (*SeriesResult, error) {
	if seriesID == "" {
		return nil, &ValidationError{Field: "series_id", Reason: "is required"}
	}
	if err := s.validate(req); err != nil {
		metrics.IncSeriesRejected("validation")
		return nil, err
	}

	if _, err := s.store.GetSeries(ctx, seriesID); err != nil {
		return nil, mapStoreErr("get series", "", "series", seriesID, err)
	}

	occurrences, err := slots.Expand(req.TimeStart, req.TimeEnd, req.Repeat)
	if err != nil {
		metrics.IncSeriesRejected("validation")
		return nil, &ValidationError{Field: "repeat", Reason: err.Error()}
	}

	room, err := s.resolveRoom(ctx, req)
	if err != nil {
		if IsConflict(err) {
			metrics.IncSeriesRejected("no_room")
		}
		return nil, err
	}

	conflict, err := s.detector.HasConflict(ctx, seriesID, room.RoomID, occurrences)
	if err != nil {
		return nil, err
	}
	if conflict {
		metrics.IncSeriesRejected("overlap")
		return nil, &ConflictError{RoomID: room.RoomID}
	}

	series := &model.Series{SeriesID: seriesID, Capacity: req.NumberOfStudents, Repetition: req.Repeat}
	reservations := buildReservations(seriesID, room, occurrences, req)

	if err := s.store.ReplaceSeries(ctx, series, reservations); err != nil {
		mapped := mapStoreErr("replace series", room.RoomID, "series", seriesID, err)
		if IsConflict(mapped) {
			metrics.IncSeriesRejected("overlap")
		}
		return nil, mapped
	}

	metrics.IncSeriesEdited()
	s.publish(events.SeriesEdited, seriesEvent{SeriesID: seriesID, RoomID: room.RoomID, Slots: len(reservations)})
	s.logger.Info().
		Str("series_id", seriesID).
		Str("room_id", room.RoomID).
		Int("slots", len(reservations)).
		Msg("series edited")

	return &SeriesResult{SeriesID: seriesID, RoomID: room.RoomID, Reservations: reservations}, nil
}

// DeleteSeries removes all occurrences of a series. Deleting a nonexistent
// series succeeds trivially.
func (s *ReservationService) DeleteSeries(ctx context.Context, seriesID string) error {
	if seriesID == "" {
		return &ValidationError{Field: "series_id", Reason: "is required"}
	}

	deleted, err := s.store.DeleteSeries(ctx, seriesID)
	if err != nil {
		return storeErr("delete series", err)
	}

	if deleted > 0 {
		metrics.IncSeriesDeleted()
		s.publish(events.SeriesDeleted, seriesEvent{SeriesID: seriesID, Slots: int(deleted)})
	}
	s.logger.Info().Str("series_id", seriesID).Int64("deleted", deleted).Msg("series deleted")
	return nil
}

// DeleteOccurrence removes a single occurrence without touching the rest of
// its series. Used to cancel one week of a recurring booking.
func (s *ReservationService) DeleteOccurrence(ctx context.Context, id int64) error {
	if id <= 0 {
		return &ValidationError{Field: "id", Reason: "must be a positive integer"}
	}
	if err := s.store.DeleteReservationByID(ctx, id); err != nil {
		return mapStoreErr("delete reservation", "", "reservation", strconv.FormatInt(id, 10), err)
	}
	s.logger.Info().Int64("reservation_id", id).Msg("occurrence deleted")
	return nil
}

// GetSeries returns the series metadata and its occurrences.
func (s *ReservationService) GetSeries(ctx context.Context, seriesID string) (*model.Series, []model.Reservation, error) {
	series, err := s.store.GetSeries(ctx, seriesID)
	if err != nil {
		return nil, nil, mapStoreErr("get series", "", "series", seriesID, err)
	}
	reservations, err := s.store.GetReservationsBySeries(ctx, seriesID)
	if err != nil {
		return nil, nil, storeErr("get series reservations", err)
	}
	return series, reservations, nil
}

func (s *ReservationService) publish(eventType string, payload seriesEvent) {
	if s.bus == nil {
		return
	}
	if err := s.bus.PublishJSON(eventType, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("event publish failed")
	}
}
