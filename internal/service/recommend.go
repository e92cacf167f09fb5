package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"roombook/internal/metrics"
	"roombook/internal/model"
	"roombook/internal/slots"
)

// Recommender suggests rooms that satisfy a capacity requirement and are
// free across every weekly occurrence of the requested window.
type Recommender struct {
	store  Store
	cache  *RoomCache
	logger *zerolog.Logger
}

// NewRecommender creates a recommender. cache may be nil.
func NewRecommender(store Store, cache *RoomCache, logger *zerolog.Logger) *Recommender {
	return &Recommender{store: store, cache: cache, logger: logger}
}

// Recommend returns capacity-eligible rooms with no overlapping reservation
// in any of the rep weekly occurrences of [start, end). The result follows
// catalog order (ascending room id), so identical state yields an identical
// list. A room free in week one but booked in a later week is excluded.
func (r *Recommender) Recommend(ctx context.Context, start, end time.Time, rep, requiredCapacity int) ([]model.Room, error) {
	if requiredCapacity < 1 {
		return nil, &ValidationError{Field: "capacity", Reason: "must be at least 1"}
	}

	occurrences, err := slots.Expand(start, end, rep)
	if err != nil {
		return nil, &ValidationError{Field: "interval", Reason: err.Error()}
	}
	metrics.IncRecommendRequest()

	catalog, err := r.catalog(ctx)
	if err != nil {
		return nil, err
	}

	eligible := make([]model.Room, 0, len(catalog))
	for _, room := range catalog {
		if room.Fits(requiredCapacity) {
			eligible = append(eligible, room)
		}
	}
	if len(eligible) == 0 {
		return []model.Room{}, nil
	}

	// Any room booked in any occurrence of the window is out, regardless of
	// which room the request originally targeted.
	booked := make(map[string]struct{})
	for _, occ := range occurrences {
		reservations, err := r.store.GetReservationsByRange(ctx, occ.Start, occ.End)
		if err != nil {
			return nil, storeErr("fetch reservations for recommendation", err)
		}
		for i := range reservations {
			booked[reservations[i].RoomID] = struct{}{}
		}
	}

	available := make([]model.Room, 0, len(eligible))
	for _, room := range eligible {
		if _, taken := booked[room.RoomID]; !taken {
			available = append(available, room)
		}
	}
	return available, nil
}

func (r *Recommender) catalog(ctx context.Context) ([]model.Room, error) {
	if rooms, ok := r.cache.Get(ctx); ok {
		return rooms, nil
	}
	rooms, err := r.store.ListRooms(ctx)
	if err != nil {
		return nil, storeErr("list rooms", err)
	}
	r.cache.Set(ctx, rooms)
	return rooms, nil
}
