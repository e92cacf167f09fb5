package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombook/internal/database"
	"roombook/internal/model"
)

func TestRoomService_CreateRoom(t *testing.T) {
	store := new(mockStore)
	svc := NewRoomService(store, nil, testLogger())
	ctx := context.Background()

	room := &model.Room{RoomID: "roomA", Name: "Room A", Capacity: 10}
	store.On("CreateRoom", ctx, room).Return(nil)

	require.NoError(t, svc.CreateRoom(ctx, room))
	store.AssertExpectations(t)
}

func TestRoomService_CreateRoomValidation(t *testing.T) {
	store := new(mockStore)
	svc := NewRoomService(store, nil, testLogger())
	ctx := context.Background()

	err := svc.CreateRoom(ctx, &model.Room{RoomID: "", Capacity: 10})
	assert.True(t, IsValidation(err))

	err = svc.CreateRoom(ctx, &model.Room{RoomID: "roomA", Capacity: 0})
	assert.True(t, IsValidation(err))

	err = svc.CreateRoom(ctx, &model.Room{RoomID: "roomA", Capacity: -4})
	assert.True(t, IsValidation(err))
}

func TestRoomService_GetRoomNotFound(t *testing.T) {
	store := new(mockStore)
	svc := NewRoomService(store, nil, testLogger())
	ctx := context.Background()

	store.On("GetRoomByID", ctx, "ghost").Return(nil, database.ErrNotFound)

	_, err := svc.GetRoom(ctx, "ghost")
	assert.True(t, IsNotFound(err))
}

func TestRoomService_DeleteRoomStillReferenced(t *testing.T) {
	store := new(mockStore)
	svc := NewRoomService(store, nil, testLogger())
	ctx := context.Background()

	store.On("DeleteRoom", ctx, "roomA").Return(database.ErrRoomReferenced)

	err := svc.DeleteRoom(ctx, "roomA")
	assert.True(t, IsValidation(err))
}

func TestRoomService_UpdateRoomNotFound(t *testing.T) {
	store := new(mockStore)
	svc := NewRoomService(store, nil, testLogger())
	ctx := context.Background()

	room := &model.Room{RoomID: "ghost", Capacity: 5}
	store.On("UpdateRoom", ctx, room).Return(database.ErrNotFound)

	err := svc.UpdateRoom(ctx, room)
	assert.True(t, IsNotFound(err))
}
