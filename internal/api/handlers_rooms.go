package api

import (
	"net/http"

	"roomstay/internal/models"
)

type roomsResponse struct {
	Rooms []*models.Room `json:"rooms"`
}

type searchResponse struct {
	Rooms []*models.Room `json:"rooms"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

func (s *HTTPServer) handleListRooms(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Rooms.ListRooms(r.Context())
	if err != nil {
		respondFailure(w, r, s.log, err)
		return
	}
	respond(w, r, http.StatusOK, roomsResponse{Rooms: list})
}

func (s *HTTPServer) handleSearchRooms(w http.ResponseWriter, r *http.Request) {
	q, fields := parseSearchQuery(r.URL.Query())
	if len(fields) == 0 {
		fields = s.validate.Struct(q)
	}
	if len(fields) > 0 {
		respond(w, r, http.StatusBadRequest, ErrorResponse{
			Message:    "Validation error",
			StatusCode: http.StatusBadRequest,
			Errors:     fields,
		})
		return
	}

	list, used, err := s.deps.Rooms.SearchRooms(r.Context(), q.Filter())
	if err != nil {
		respondFailure(w, r, s.log, err)
		return
	}
	respond(w, r, http.StatusOK, searchResponse{Rooms: list, Page: used.Page, Size: used.Size})
}

func (s *HTTPServer) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	roomID, ok := idParam(w, r, "roomId", "Room")
	if !ok {
		return
	}

	detail, err := s.deps.Rooms.GetRoomDetail(r.Context(), roomID)
	if err != nil {
		respondFailure(w, r, s.log, err)
		return
	}
	respond(w, r, http.StatusOK, detail)
}

func (s *HTTPServer) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req RoomRequest
	if !s.validate.decodeAndValidate(w, r, &req) {
		return
	}

	room, err := s.deps.Rooms.CreateRoom(r.Context(), callerID(r.Context()), req.Room())
	if err != nil {
		respondFailure(w, r, s.log, err)
		return
	}
	respond(w, r, http.StatusCreated, room)
}

func (s *HTTPServer) handleAddRoomImage(w http.ResponseWriter, r *http.Request) {
	roomID, ok := idParam(w, r, "roomId", "Room")
	if !ok {
		return
	}
	var req ImageRequest
	if !s.validate.decodeAndValidate(w, r, &req) {
		return
	}

	img, err := s.deps.Rooms.AddRoomImage(r.Context(), roomID, callerID(r.Context()), req.URL)
	if err != nil {
		respondFailure(w, r, s.log, err)
		return
	}
	respond(w, r, http.StatusCreated, img)
}
