// Package booking decides whether a booking may be created or revised.
//
// Everything here is pure: store lookups happen in the service layer and the
// results are handed in, and "today" is passed by the caller from an injected
// clock. Checks run in a fixed order: date format, range, ownership, past
// date, conflict.
package booking

import (
	"roomstay/internal/calendar"
)

// Window is a half-open stay [Start, End): the guest leaves on End, so End is
// free for the next arrival.
type Window struct {
	Start calendar.Date
	End   calendar.Date
}

func (w Window) String() string {
	return "[" + w.Start.String() + ", " + w.End.String() + ")"
}

// Nights is the number of nights in the window.
func (w Window) Nights() int { return w.Start.DaysUntil(w.End) }

// Contains reports whether day d is occupied by the window.
func (w Window) Contains(d calendar.Date) bool {
	return !d.Before(w.Start) && d.Before(w.End)
}

// ParseWindow parses both endpoints and checks their order.
func ParseWindow(startStr, endStr string) (Window, error) {
	fields := map[string]string{}

	start, err := calendar.ParseDate(startStr)
	if err != nil {
		fields["startDate"] = "startDate must be a valid YYYY-MM-DD date"
	}
	end, err := calendar.ParseDate(endStr)
	if err != nil {
		fields["endDate"] = "endDate must be a valid YYYY-MM-DD date"
	}
	if len(fields) > 0 {
		return Window{}, &RejectedError{
			Kind:    KindInvalidDateFormat,
			Message: ErrInvalidDateFormat.Message,
			Fields:  fields,
		}
	}

	w := Window{Start: start, End: end}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

// Validate rejects windows with start >= end.
func (w Window) Validate() error {
	if !w.Start.Before(w.End) {
		return &RejectedError{
			Kind:    KindInvalidRange,
			Message: ErrInvalidRange.Message,
			Fields:  map[string]string{"endDate": "endDate cannot be on or before startDate"},
		}
	}
	return nil
}

// CheckNotPast rejects a window that starts today or earlier.
func CheckNotPast(today calendar.Date, w Window) error {
	if !today.Before(w.Start) {
		return ErrPastBooking
	}
	return nil
}

// CheckEditable rejects edits of a booking whose stay has started, and edits
// that move a booking into the past.
func CheckEditable(today calendar.Date, existing, proposed Window) error {
	if !today.Before(existing.Start) {
		return ErrPastBooking
	}
	return CheckNotPast(today, proposed)
}

// CheckMaxAdvance rejects windows starting more than maxDays after today.
// A non-positive maxDays disables the check.
func CheckMaxAdvance(today calendar.Date, w Window, maxDays int) error {
	if maxDays <= 0 {
		return nil
	}
	if today.AddDays(maxDays).Before(w.Start) {
		return &RejectedError{
			Kind:    KindInvalidRange,
			Message: "startDate is too far in the future",
			Fields:  map[string]string{"startDate": "startDate is too far in the future"},
		}
	}
	return nil
}
