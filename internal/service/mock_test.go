package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"roombook/internal/model"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateRoom(ctx context.Context, room *model.Room) error {
	return m.Called(ctx, room).Error(0)
}

func (m *mockStore) GetRoomByID(ctx context.Context, roomID string) (*model.Room, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Room), args.Error(1)
}

func (m *mockStore) ListRooms(ctx context.Context) ([]model.Room, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Room), args.Error(1)
}

func (m *mockStore) ListRoomsByCapacity(ctx context.Context, floor int) ([]model.Room, error) {
	args := m.Called(ctx, floor)
	return args.Get(0).([]model.Room), args.Error(1)
}

func (m *mockStore) UpdateRoom(ctx context.Context, room *model.Room) error {
	return m.Called(ctx, room).Error(0)
}

func (m *mockStore) DeleteRoom(ctx context.Context, roomID string) error {
	return m.Called(ctx, roomID).Error(0)
}

func (m *mockStore) GetReservationsByRoomAndRange(ctx context.Context, roomID string, from, to time.Time) ([]model.Reservation, error) {
	args := m.Called(ctx, roomID, from, to)
	return args.Get(0).([]model.Reservation), args.Error(1)
}

func (m *mockStore) GetReservationsByRange(ctx context.Context, from, to time.Time) ([]model.Reservation, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]model.Reservation), args.Error(1)
}

func (m *mockStore) GetReservationsBySeries(ctx context.Context, seriesID string) ([]model.Reservation, error) {
	args := m.Called(ctx, seriesID)
	return args.Get(0).([]model.Reservation), args.Error(1)
}

func (m *mockStore) GetSeries(ctx context.Context, seriesID string) (*model.Series, error) {
	args := m.Called(ctx, seriesID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Series), args.Error(1)
}

func (m *mockStore) CreateSeries(ctx context.Context, series *model.Series, reservations []model.Reservation) error {
	return m.Called(ctx, series, reservations).Error(0)
}

func (m *mockStore) ReplaceSeries(ctx context.Context, series *model.Series, reservations []model.Reservation) error {
	return m.Called(ctx, series, reservations).Error(0)
}

func (m *mockStore) DeleteSeries(ctx context.Context, seriesID string) (int64, error) {
	args := m.Called(ctx, seriesID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) DeleteReservationByID(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) GetScheduleRows(ctx context.Context, from, to time.Time, roomID, competency string) ([]model.ScheduleRow, error) {
	args := m.Called(ctx, from, to, roomID, competency)
	return args.Get(0).([]model.ScheduleRow), args.Error(1)
}

type mockBus struct {
	mock.Mock
}

func (m *mockBus) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}
