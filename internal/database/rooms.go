package database

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"roombook/internal/model"
)

// CreateRoom inserts a new room.
func (db *DB) CreateRoom(ctx context.Context, room *model.Room) error {
	now := time.Now().UTC()
	_, err := db.ExecContext(ctx,
		`INSERT INTO rooms (room_id, name, capacity, equipment, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		room.RoomID, room.Name, room.Capacity, room.Equipment, now, now,
	)
	return err
}

// GetRoomByID returns a room or ErrNotFound.
func (db *DB) GetRoomByID(ctx context.Context, roomID string) (*model.Room, error) {
	var r model.Room
	err := db.QueryRowContext(ctx,
		`SELECT room_id, name, capacity, equipment, created_at, updated_at
		FROM rooms WHERE room_id = ?`,
		roomID,
	).Scan(&r.RoomID, &r.Name, &r.Capacity, &r.Equipment, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRooms returns the whole catalog in stable room_id order.
func (db *DB) ListRooms(ctx context.Context) ([]model.Room, error) {
	return db.listRooms(ctx, 0)
}

// ListRoomsByCapacity returns rooms with capacity >= floor in stable
// room_id order.
func (db *DB) ListRoomsByCapacity(ctx context.Context, floor int) ([]model.Room, error) {
	return db.listRooms(ctx, floor)
}

func (db *DB) listRooms(ctx context.Context, capacityFloor int) ([]model.Room, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT room_id, name, capacity, equipment, created_at, updated_at
		FROM rooms WHERE capacity >= ? ORDER BY room_id`,
		capacityFloor,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []model.Room
	for rows.Next() {
		var r model.Room
		if err := rows.Scan(&r.RoomID, &r.Name, &r.Capacity, &r.Equipment, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

// UpdateRoom changes name, capacity and equipment of an existing room.
// Identity is immutable.
func (db *DB) UpdateRoom(ctx context.Context, room *model.Room) error {
	res, err := db.ExecContext(ctx,
		`UPDATE rooms SET name = ?, capacity = ?, equipment = ?, updated_at = ?
		WHERE room_id = ?`,
		room.Name, room.Capacity, room.Equipment, time.Now().UTC(), room.RoomID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRoom removes a room. Rooms with reservations are protected by the
// foreign key and reported as ErrRoomReferenced.
func (db *DB) DeleteRoom(ctx context.Context, roomID string) error {
	res, err := db.ExecContext(ctx, "DELETE FROM rooms WHERE room_id = ?", roomID)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return ErrRoomReferenced
		}
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
