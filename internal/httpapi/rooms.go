package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"roombook/internal/metrics"
	"roombook/internal/model"
)

// RecommendRequest is the request body for POST /api/recommend.
type RecommendRequest struct {
	TimeStart time.Time `json:"time_start"`
	TimeEnd   time.Time `json:"time_end"`
	Repeat    int       `json:"repeat"`
	Capacity  int       `json:"capacity"`
}

// handleRecommend lists rooms free for every weekly occurrence of a window.
// POST /api/recommend
func (s *HTTPServer) handleRecommend(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("recommend")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}

	var req RecommendRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	rooms, err := s.recommender.Recommend(r.Context(), req.TimeStart, req.TimeEnd, req.Repeat, req.Capacity)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"rooms": rooms})
}

// handleRooms lists or creates rooms.
// GET/POST /api/rooms
func (s *HTTPServer) handleRooms(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("rooms")

	switch r.Method {
	case http.MethodGet:
		rooms, err := s.rooms.ListRooms(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"rooms": rooms})

	case http.MethodPost:
		var room model.Room
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&room); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		if err := s.rooms.CreateRoom(r.Context(), &room); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, room)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleRoomByID reads, updates or deletes one room.
// GET/PUT/DELETE /api/rooms/{room_id}
func (s *HTTPServer) handleRoomByID(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("room_by_id")

	roomID := strings.TrimPrefix(r.URL.Path, "/api/rooms/")
	if roomID == "" || strings.Contains(roomID, "/") {
		writeError(w, http.StatusBadRequest, "room_id is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		room, err := s.rooms.GetRoom(r.Context(), roomID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, room)

	case http.MethodPut:
		var room model.Room
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&room); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		room.RoomID = roomID

		if err := s.rooms.UpdateRoom(r.Context(), &room); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, room)

	case http.MethodDelete:
		if err := s.rooms.DeleteRoom(r.Context(), roomID); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
