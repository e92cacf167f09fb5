package service

import (
	"context"
	"time"

	"roombook/internal/model"
)

// Store is the persistence contract the scheduler core consumes.
// *database.DB satisfies it; tests substitute a mock.
type Store interface {
	// Rooms
	CreateRoom(ctx context.Context, room *model.Room) error
	GetRoomByID(ctx context.Context, roomID string) (*model.Room, error)
	ListRooms(ctx context.Context) ([]model.Room, error)
	ListRoomsByCapacity(ctx context.Context, floor int) ([]model.Room, error)
	UpdateRoom(ctx context.Context, room *model.Room) error
	DeleteRoom(ctx context.Context, roomID string) error

	// Reservations
	GetReservationsByRoomAndRange(ctx context.Context, roomID string, from, to time.Time) ([]model.Reservation, error)
	GetReservationsByRange(ctx context.Context, from, to time.Time) ([]model.Reservation, error)
	GetReservationsBySeries(ctx context.Context, seriesID string) ([]model.Reservation, error)
	GetSeries(ctx context.Context, seriesID string) (*model.Series, error)
	CreateSeries(ctx context.Context, series *model.Series, reservations []model.Reservation) error
	ReplaceSeries(ctx context.Context, series *model.Series, reservations []model.Reservation) error
	DeleteSeries(ctx context.Context, seriesID string) (int64, error)
	DeleteReservationByID(ctx context.Context, id int64) error

	// Reporting
	GetScheduleRows(ctx context.Context, from, to time.Time, roomID, competency string) ([]model.ScheduleRow, error)
}
