package service

import (
	"errors"

	"roomstay/internal/booking"
	"roomstay/internal/database"
)

// ErrRoomBusy is returned when the per-room lock stays taken past the wait limit.
var ErrRoomBusy = errors.New("room is busy, try again")

// lookupErr turns a failed read into NotFound for resource or a store error.
func lookupErr(op string, err error, resource string) error {
	if database.IsNotFound(err) {
		return booking.NotFound(resource)
	}
	return booking.WrapStore(op, err)
}

// writeErr maps errors of a guarded write. Rejections from the guard pass
// through; a trigger-detected overlap is reported as a conflict.
func writeErr(op string, err error, resource string) error {
	switch {
	case errors.Is(err, database.ErrOverlap):
		return booking.Availability{}.Err()
	case errors.Is(err, database.ErrNotFound):
		return booking.NotFound(resource)
	case errors.Is(err, database.ErrLimitReached):
		return booking.ErrMaxImages
	}
	return booking.WrapStore(op, err)
}
