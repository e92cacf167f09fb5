package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"roombook/internal/model"
)

// ScheduleService answers range-bounded schedule queries for reporting.
type ScheduleService struct {
	store  Store
	logger *zerolog.Logger
}

// NewScheduleService creates a schedule query service.
func NewScheduleService(store Store, logger *zerolog.Logger) *ScheduleService {
	return &ScheduleService{store: store, logger: logger}
}

// Schedule returns reservations overlapping [from, to) joined with room
// metadata, optionally narrowed to one room or one competency. A missing
// room row degrades to nil room fields and a warning, never a failure.
func (s *ScheduleService) Schedule(ctx context.Context, from, to time.Time, roomID, competency string) ([]model.ScheduleRow, error) {
	if !from.Before(to) {
		return nil, &ValidationError{Field: "start_date", Reason: "must be before end_date"}
	}

	rows, err := s.store.GetScheduleRows(ctx, from, to, roomID, competency)
	if err != nil {
		return nil, storeErr("query schedule", err)
	}

	for i := range rows {
		if rows[i].RoomName == nil {
			s.logger.Warn().
				Str("room_id", rows[i].RoomID).
				Int64("reservation_id", rows[i].ID).
				Msg("schedule row references a missing room")
		}
	}
	return rows, nil
}
