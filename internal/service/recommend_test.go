package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"roombook/internal/model"
)

func catalog() []model.Room {
	return []model.Room{
		{RoomID: "roomA", Name: "Room A", Capacity: 10},
		{RoomID: "roomB", Name: "Room B", Capacity: 25},
		{RoomID: "roomC", Name: "Room C", Capacity: 40},
	}
}

func TestRecommend_CapacityFilter(t *testing.T) {
	store := new(mockStore)
	rec := NewRecommender(store, nil, testLogger())
	ctx := context.Background()

	store.On("ListRooms", ctx).Return(catalog(), nil)
	store.On("GetReservationsByRange", ctx, mock.Anything, mock.Anything).Return([]model.Reservation{}, nil)

	rooms, err := rec.Recommend(ctx, datetime(2025, 10, 28, 9, 0), datetime(2025, 10, 28, 10, 0), 1, 20)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "roomB", rooms[0].RoomID)
	assert.Equal(t, "roomC", rooms[1].RoomID)
}

func TestRecommend_ExcludesBookedInAnyWeek(t *testing.T) {
	store := new(mockStore)
	rec := NewRecommender(store, nil, testLogger())
	ctx := context.Background()

	store.On("ListRooms", ctx).Return(catalog(), nil)

	// Week 1: everything free; week 2: roomB is taken.
	store.On("GetReservationsByRange", ctx,
		datetime(2025, 10, 28, 9, 0), datetime(2025, 10, 28, 10, 0)).
		Return([]model.Reservation{}, nil).Once()
	store.On("GetReservationsByRange", ctx,
		datetime(2025, 11, 4, 9, 0), datetime(2025, 11, 4, 10, 0)).
		Return([]model.Reservation{
			{SeriesID: "x", RoomID: "roomB",
				TimeStart: datetime(2025, 11, 4, 9, 30), TimeEnd: datetime(2025, 11, 4, 10, 30)},
		}, nil).Once()

	rooms, err := rec.Recommend(ctx, datetime(2025, 10, 28, 9, 0), datetime(2025, 10, 28, 10, 0), 2, 20)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "roomC", rooms[0].RoomID)
	store.AssertExpectations(t)
}

func TestRecommend_NoEligibleRooms(t *testing.T) {
	store := new(mockStore)
	rec := NewRecommender(store, nil, testLogger())
	ctx := context.Background()

	store.On("ListRooms", ctx).Return(catalog(), nil)

	rooms, err := rec.Recommend(ctx, datetime(2025, 10, 28, 9, 0), datetime(2025, 10, 28, 10, 0), 1, 100)
	require.NoError(t, err)
	assert.Empty(t, rooms)
	// No eligible room means no reservation reads at all
	store.AssertNotCalled(t, "GetReservationsByRange", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecommend_DeterministicOrder(t *testing.T) {
	store := new(mockStore)
	rec := NewRecommender(store, nil, testLogger())
	ctx := context.Background()

	store.On("ListRooms", ctx).Return(catalog(), nil)
	store.On("GetReservationsByRange", ctx, mock.Anything, mock.Anything).Return([]model.Reservation{}, nil)

	first, err := rec.Recommend(ctx, datetime(2025, 10, 28, 9, 0), datetime(2025, 10, 28, 10, 0), 1, 5)
	require.NoError(t, err)
	second, err := rec.Recommend(ctx, datetime(2025, 10, 28, 9, 0), datetime(2025, 10, 28, 10, 0), 1, 5)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRecommend_RejectsInvalidInput(t *testing.T) {
	store := new(mockStore)
	rec := NewRecommender(store, nil, testLogger())
	ctx := context.Background()

	_, err := rec.Recommend(ctx, datetime(2025, 10, 28, 9, 0), datetime(2025, 10, 28, 10, 0), 0, 5)
	assert.True(t, IsValidation(err))

	_, err = rec.Recommend(ctx, datetime(2025, 10, 28, 10, 0), datetime(2025, 10, 28, 9, 0), 1, 5)
	assert.True(t, IsValidation(err))

	_, err = rec.Recommend(ctx, datetime(2025, 10, 28, 9, 0), datetime(2025, 10, 28, 10, 0), 1, 0)
	assert.True(t, IsValidation(err))
}
