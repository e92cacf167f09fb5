package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"roombook/internal/database"
	"roombook/internal/model"
)

// RoomService is the administrative surface over the room catalog.
// Mutations invalidate the catalog cache the recommender reads from.
type RoomService struct {
	store  Store
	cache  *RoomCache
	logger *zerolog.Logger
}

// NewRoomService creates a room admin service. cache may be nil.
func NewRoomService(store Store, cache *RoomCache, logger *zerolog.Logger) *RoomService {
	return &RoomService{store: store, cache: cache, logger: logger}
}

func validateRoom(room *model.Room) error {
	if strings.TrimSpace(room.RoomID) == "" {
		return &ValidationError{Field: "room_id", Reason: "is required"}
	}
	if room.Capacity < 1 {
		return &ValidationError{Field: "capacity", Reason: "must be a positive integer"}
	}
	return nil
}

// CreateRoom adds a room to the catalog.
func (s *RoomService) CreateRoom(ctx context.Context, room *model.Room) error {
	if err := validateRoom(room); err != nil {
		return err
	}
	if err := s.store.CreateRoom(ctx, room); err != nil {
		return storeErr("create room", err)
	}
	s.cache.Invalidate(ctx)
	s.logger.Info().Str("room_id", room.RoomID).Int("capacity", room.Capacity).Msg("room created")
	return nil
}

// GetRoom returns one room.
func (s *RoomService) GetRoom(ctx context.Context, roomID string) (*model.Room, error) {
	room, err := s.store.GetRoomByID(ctx, roomID)
	if err != nil {
		return nil, mapStoreErr("get room", roomID, "room", roomID, err)
	}
	return room, nil
}

// ListRooms returns the whole catalog.
func (s *RoomService) ListRooms(ctx context.Context) ([]model.Room, error) {
	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return nil, storeErr("list rooms", err)
	}
	return rooms, nil
}

// UpdateRoom changes a room's mutable fields. Identity stays fixed.
func (s *RoomService) UpdateRoom(ctx context.Context, room *model.Room) error {
	if err := validateRoom(room); err != nil {
		return err
	}
	if err := s.store.UpdateRoom(ctx, room); err != nil {
		return mapStoreErr("update room", room.RoomID, "room", room.RoomID, err)
	}
	s.cache.Invalidate(ctx)
	return nil
}

// DeleteRoom removes a room. A room still referenced by reservations is
// refused.
func (s *RoomService) DeleteRoom(ctx context.Context, roomID string) error {
	if err := s.store.DeleteRoom(ctx, roomID); err != nil {
		if errors.Is(err, database.ErrRoomReferenced) {
			return &ValidationError{Field: "room_id", Reason: "room still has reservations"}
		}
		return mapStoreErr("delete room", roomID, "room", roomID, err)
	}
	s.cache.Invalidate(ctx)
	s.logger.Info().Str("room_id", roomID).Msg("room deleted")
	return nil
}
