package booking

import "roomstay/internal/models"

// Overlaps reports whether two half-open windows share at least one night.
// Back-to-back windows, where one ends the day the other starts, do not overlap.
func Overlaps(a, b Window) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// BookingWindow returns the stay of a persisted booking.
func BookingWindow(b *models.Booking) Window {
	return Window{Start: b.StartDate, End: b.EndDate}
}

// Availability is the outcome of a conflict scan.
type Availability struct {
	Available  bool
	ConflictID int64
}

// Err converts a blocked result to a Conflict rejection.
func (a Availability) Err() error {
	if a.Available {
		return nil
	}
	return &RejectedError{
		Kind:       KindConflict,
		Message:    ErrConflict.Message,
		ConflictID: a.ConflictID,
		Fields: map[string]string{
			"startDate": "Start date conflicts with an existing booking",
			"endDate":   "End date conflicts with an existing booking",
		},
	}
}

// DetectConflict scans existing for a booking of roomID overlapping w.
// excludeID skips the booking being revised; 0 excludes nothing. Bookings of
// other rooms never conflict.
func DetectConflict(roomID int64, existing []*models.Booking, w Window, excludeID int64) Availability {
	for _, b := range existing {
		if b == nil || b.RoomID != roomID {
			continue
		}
		if excludeID != 0 && b.ID == excludeID {
			continue
		}
		if Overlaps(BookingWindow(b), w) {
			return Availability{ConflictID: b.ID}
		}
	}
	return Availability{Available: true}
}
