package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"roomstay/internal/export"
	"roomstay/internal/models"
)

type bookingsResponse struct {
	Bookings any `json:"Bookings"`
}

type availabilityResponse struct {
	RoomID int64                    `json:"roomId"`
	Days   []models.DayAvailability `json:"days"`
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	roomID, ok := idParam(w, r, "roomId", "Room")
	if !ok {
		return
	}
	var req BookingRequest
	if !s.validate.decodeAndValidate(w, r, &req) {
		return
	}

	b, err := s.deps.Bookings.ProposeBooking(r.Context(), roomID, callerID(r.Context()), req.StartDate, req.EndDate, s.deps.Bookings.Now())
	if err != nil {
		respondFailure(w, r, s.log, err)
		return
	}
	respond(w, r, http.StatusCreated, b)
}

func (s *HTTPServer) handleUpdateBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := idParam(w, r, "bookingId", "Booking")
	if !ok {
		return
	}
	var req BookingRequest
	if !s.validate.decodeAndValidate(w, r, &req) {
		return
	}

	b, err := s.deps.Bookings.ReviseBooking(r.Context(), bookingID, callerID(r.Context()), req.StartDate, req.EndDate, s.deps.Bookings.Now())
	if err != nil {
		respondFailure(w, r, s.log, err)
		return
	}
	respond(w, r, http.StatusOK, b)
}

func (s *HTTPServer) handleDeleteBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := idParam(w, r, "bookingId", "Booking")
	if !ok {
		return
	}

	if err := s.deps.Bookings.DeleteBooking(r.Context(), bookingID, callerID(r.Context()), s.deps.Bookings.Now()); err != nil {
		respondFailure(w, r, s.log, err)
		return
	}
	respond(w, r, http.StatusOK, MessageResponse{Message: "Successfully deleted", StatusCode: http.StatusOK})
}

func (s *HTTPServer) handleUserBookings(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Bookings.ListUserBookings(r.Context(), callerID(r.Context()))
	if err != nil {
		respondFailure(w, r, s.log, err)
		return
	}
	respond(w, r, http.StatusOK, bookingsResponse{Bookings: list})
}

func (s *HTTPServer) handleRoomBookings(w http.ResponseWriter, r *http.Request) {
	roomID, ok := idParam(w, r, "roomId", "Room")
	if !ok {
		return
	}

	res, err := s.deps.Bookings.ListRoomBookings(r.Context(), roomID, callerID(r.Context()))
	if err != nil {
		respondFailure(w, r, s.log, err)
		return
	}
	if res.Owner {
		respond(w, r, http.StatusOK, bookingsResponse{Bookings: res.Bookings})
		return
	}
	respond(w, r, http.StatusOK, bookingsResponse{Bookings: res.Public})
}

func (s *HTTPServer) handleRoomAvailability(w http.ResponseWriter, r *http.Request) {
	roomID, ok := idParam(w, r, "roomId", "Room")
	if !ok {
		return
	}

	days := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("days")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respond(w, r, http.StatusBadRequest, ErrorResponse{
				Message:    "Validation error",
				StatusCode: http.StatusBadRequest,
				Errors:     map[string]string{"days": "days must be a positive integer"},
			})
			return
		}
		days = n
	}

	list, err := s.deps.Bookings.GetRoomAvailability(r.Context(), roomID, r.URL.Query().Get("from"), days, s.deps.Bookings.Now())
	if err != nil {
		respondFailure(w, r, s.log, err)
		return
	}
	respond(w, r, http.StatusOK, availabilityResponse{RoomID: roomID, Days: list})
}

func (s *HTTPServer) handleExportBookings(w http.ResponseWriter, r *http.Request) {
	roomID, ok := idParam(w, r, "roomId", "Room")
	if !ok {
		return
	}

	room, list, err := s.deps.Bookings.ExportRoomBookings(r.Context(), roomID, callerID(r.Context()))
	if err != nil {
		respondFailure(w, r, s.log, err)
		return
	}

	today := s.deps.Bookings.Today()
	f, err := export.BookingsWorkbook(room, list, today)
	if err != nil {
		respondFailure(w, r, s.log, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(room, today)))
	if err := f.Write(w); err != nil {
		s.log.Error().Err(err).Int64("room_id", roomID).Msg("Failed to write export")
	}
}
