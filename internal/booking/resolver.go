package booking

import (
	"roomstay/internal/calendar"
	"roomstay/internal/models"
)

// Policy holds the tunable limits of the resolver.
type Policy struct {
	// MaxAdvanceDays bounds how far ahead a stay may start. Zero disables it.
	MaxAdvanceDays int
}

// CheckDates runs the date policy of a new stay once ownership passed:
// no past or same-day arrival, and no arrival beyond the advance limit.
func (p Policy) CheckDates(today calendar.Date, w Window) error {
	if err := CheckNotPast(today, w); err != nil {
		return err
	}
	return CheckMaxAdvance(today, w, p.MaxAdvanceDays)
}

// CheckRevisionDates is CheckDates for an edit: the existing stay must not
// have started either.
func (p Policy) CheckRevisionDates(today calendar.Date, existing *models.Booking, w Window) error {
	if err := CheckEditable(today, BookingWindow(existing), w); err != nil {
		return err
	}
	return CheckMaxAdvance(today, w, p.MaxAdvanceDays)
}

// ResolveCancellation allows deleting only the caller's bookings that have not started.
func (p Policy) ResolveCancellation(existing *models.Booking, callerID int64, today calendar.Date) error {
	if err := CheckBookingOwner(existing, callerID); err != nil {
		return err
	}
	if !today.Before(existing.StartDate) {
		return Reject(KindPastBooking, "Bookings that have been started can't be deleted")
	}
	return nil
}

// ConflictGuard returns the check run against the room's bookings inside the
// write transaction.
func ConflictGuard(roomID int64, w Window, excludeID int64) func([]*models.Booking) error {
	return func(existing []*models.Booking) error {
		return DetectConflict(roomID, existing, w, excludeID).Err()
	}
}

// Calendar marks each of days days from `from` as booked or free.
func Calendar(existing []*models.Booking, from calendar.Date, days int) []models.DayAvailability {
	out := make([]models.DayAvailability, 0, days)
	for i := 0; i < days; i++ {
		day := from.AddDays(i)
		entry := models.DayAvailability{Date: day}
		for _, b := range existing {
			if BookingWindow(b).Contains(day) {
				entry.Booked = true
				entry.BookingID = b.ID
				break
			}
		}
		out = append(out, entry)
	}
	return out
}
