package booking

import (
	"errors"
	"fmt"
)

// Kind classifies why a request was rejected.
type Kind string

const (
	KindInvalidDateFormat Kind = "InvalidDateFormat"
	KindInvalidRange      Kind = "InvalidRange"
	KindPastBooking       Kind = "PastBooking"
	KindOwnRoomBooking    Kind = "OwnRoomBooking"
	KindOwnRoomReview     Kind = "OwnRoomReview"
	KindDuplicateReview   Kind = "DuplicateReview"
	KindMaxImages         Kind = "MaxImages"
	KindNotFound          Kind = "NotFound"
	KindConflict          Kind = "Conflict"
)

// RejectedError is a business rule rejection. Errors match by Kind, so
// errors.Is(err, ErrConflict) holds for any conflict regardless of message.
type RejectedError struct {
	Kind    Kind
	Message string
	// ConflictID is the booking that blocks the requested window, set for KindConflict.
	ConflictID int64
	// Fields holds per-field messages, e.g. startDate/endDate for date errors.
	Fields map[string]string
}

func (e *RejectedError) Error() string {
	if e.ConflictID != 0 {
		return fmt.Sprintf("%s: %s (booking %d)", e.Kind, e.Message, e.ConflictID)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *RejectedError) Is(target error) bool {
	t, ok := target.(*RejectedError)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidDateFormat = &RejectedError{Kind: KindInvalidDateFormat, Message: "Dates must use the YYYY-MM-DD format"}
	ErrInvalidRange      = &RejectedError{Kind: KindInvalidRange, Message: "endDate cannot be on or before startDate"}
	ErrPastBooking       = &RejectedError{Kind: KindPastBooking, Message: "Past bookings can't be modified"}
	ErrOwnRoomBooking    = &RejectedError{Kind: KindOwnRoomBooking, Message: "Cannot book your own room"}
	ErrOwnRoomReview     = &RejectedError{Kind: KindOwnRoomReview, Message: "Cannot review your own room"}
	ErrDuplicateReview   = &RejectedError{Kind: KindDuplicateReview, Message: "User already has a review for this room"}
	ErrMaxImages         = &RejectedError{Kind: KindMaxImages, Message: "Maximum number of images for this resource was reached"}
	ErrNotFound          = &RejectedError{Kind: KindNotFound, Message: "Resource couldn't be found"}
	ErrConflict          = &RejectedError{Kind: KindConflict, Message: "Sorry, this room is already booked for the specified dates"}
)

// Reject builds a rejection of kind with a custom message.
func Reject(kind Kind, message string) *RejectedError {
	return &RejectedError{Kind: kind, Message: message}
}

// NotFound is a KindNotFound rejection naming the missing resource.
func NotFound(resource string) *RejectedError {
	return Reject(KindNotFound, resource+" couldn't be found")
}

// KindOf returns the rejection kind of err, or "" when err is not a rejection.
func KindOf(err error) Kind {
	var rej *RejectedError
	if errors.As(err, &rej) {
		return rej.Kind
	}
	return ""
}

// ErrStore marks failures of the backing store. They are never rejections.
var ErrStore = errors.New("store failure")

// StoreError wraps a persistence failure with the operation that hit it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStore, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStore }

// WrapStore wraps err as a StoreError unless it already is a rejection.
func WrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	var rej *RejectedError
	if errors.As(err, &rej) {
		return err
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
