package api

import (
	"errors"
	"net/http"

	"roomstay/internal/booking"
	"roomstay/internal/service"

	"github.com/go-chi/render"
	"github.com/rs/zerolog"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message    string            `json:"message"`
	StatusCode int               `json:"statusCode"`
	Errors     map[string]string `json:"errors,omitempty"`
}

// MessageResponse acknowledges requests without a resource body.
type MessageResponse struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

var kindStatus = map[booking.Kind]int{
	booking.KindInvalidDateFormat: http.StatusBadRequest,
	booking.KindInvalidRange:      http.StatusBadRequest,
	booking.KindPastBooking:       http.StatusForbidden,
	booking.KindOwnRoomBooking:    http.StatusForbidden,
	booking.KindOwnRoomReview:     http.StatusForbidden,
	booking.KindDuplicateReview:   http.StatusForbidden,
	booking.KindMaxImages:         http.StatusForbidden,
	booking.KindNotFound:          http.StatusNotFound,
	booking.KindConflict:          http.StatusConflict,
}

// errorResponse maps a service error to its HTTP form. Store failures never
// leak their cause to the client.
func errorResponse(err error) ErrorResponse {
	if errors.Is(err, service.ErrRoomBusy) {
		return ErrorResponse{Message: "Room is busy, try again", StatusCode: http.StatusServiceUnavailable}
	}

	var rej *booking.RejectedError
	if errors.As(err, &rej) {
		status, ok := kindStatus[rej.Kind]
		if !ok {
			status = http.StatusBadRequest
		}
		return ErrorResponse{Message: rej.Message, StatusCode: status, Errors: rej.Fields}
	}

	return ErrorResponse{Message: "Internal server error", StatusCode: http.StatusInternalServerError}
}

func respond(w http.ResponseWriter, r *http.Request, status int, payload any) {
	render.Status(r, status)
	render.JSON(w, r, payload)
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	respond(w, r, status, ErrorResponse{Message: message, StatusCode: status})
}

func respondFailure(w http.ResponseWriter, r *http.Request, logger *zerolog.Logger, err error) {
	resp := errorResponse(err)
	if resp.StatusCode >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("request_id", requestID(r.Context())).Str("path", r.URL.Path).Msg("Request failed")
	}
	respond(w, r, resp.StatusCode, resp)
}
