package model

import "time"

// Room is a bookable physical room.
type Room struct {
	RoomID    string    `json:"room_id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	Equipment string    `json:"equipment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Fits reports whether the room can seat the requested number of students.
func (r *Room) Fits(students int) bool {
	return r.Capacity >= students
}
