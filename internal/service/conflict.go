package service

import (
	"context"

	"github.com/rs/zerolog"

	"roombook/internal/model"
)

// ConflictDetector checks candidate intervals against existing bookings.
// It only reads; calling it any number of times mutates nothing.
type ConflictDetector struct {
	store  Store
	logger *zerolog.Logger
}

// NewConflictDetector creates a detector over the given store.
func NewConflictDetector(store Store, logger *zerolog.Logger) *ConflictDetector {
	return &ConflictDetector{store: store, logger: logger}
}

// HasConflict reports whether any candidate interval overlaps an existing
// reservation in the room. Reservations of excludeSeriesID are skipped, which
// is how editing a series avoids conflicting with itself; pass "" for no
// exclusion. Returns on the first overlap found.
//
// The fetch is narrowed to each candidate's calendar day as a pre-filter;
// the half-open overlap predicate stays the conflict criterion, so slots
// contained wholly within one day are still caught.
func (d *ConflictDetector) HasConflict(ctx context.Context, excludeSeriesID, roomID string, candidates []model.Interval) (bool, error) {
	for _, candidate := range candidates {
		dayStart, dayEnd := candidate.DayBounds()
		if candidate.End.After(dayEnd) {
			dayEnd = candidate.End
		}

		existing, err := d.store.GetReservationsByRoomAndRange(ctx, roomID, dayStart, dayEnd)
		if err != nil {
			return false, storeErr("fetch reservations for conflict check", err)
		}

		for i := range existing {
			res := &existing[i]
			if excludeSeriesID != "" && res.SeriesID == excludeSeriesID {
				continue
			}
			if candidate.Overlaps(res.Interval()) {
				d.logger.Debug().
					Str("room_id", roomID).
					Time("candidate_start", candidate.Start).
					Time("candidate_end", candidate.End).
					Time("booked_start", res.TimeStart).
					Time("booked_end", res.TimeEnd).
					Msg("conflict detected")
				return true, nil
			}
		}
	}
	return false, nil
}
