package models

import (
	"time"

	"roomstay/internal/calendar"
)

// Booking is a reservation of a room for the half-open window [StartDate, EndDate).
type Booking struct {
	ID        int64         `json:"id"`
	RoomID    int64         `json:"roomId"`
	UserID    int64         `json:"userId"`
	StartDate calendar.Date `json:"startDate"`
	EndDate   calendar.Date `json:"endDate"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`

	Room *RoomSummary `json:"Room,omitempty"`
	User *UserSummary `json:"User,omitempty"`
}

// Nights is the number of nights covered by the booking.
func (b *Booking) Nights() int {
	return b.StartDate.DaysUntil(b.EndDate)
}

// PublicBooking is what a non-owner of a room may see about its bookings.
type PublicBooking struct {
	RoomID    int64         `json:"roomId"`
	StartDate calendar.Date `json:"startDate"`
	EndDate   calendar.Date `json:"endDate"`
}

func (b *Booking) Public() PublicBooking {
	return PublicBooking{RoomID: b.RoomID, StartDate: b.StartDate, EndDate: b.EndDate}
}

// DayAvailability is one day of a room availability calendar.
type DayAvailability struct {
	Date      calendar.Date `json:"date"`
	Booked    bool          `json:"booked"`
	BookingID int64         `json:"bookingId,omitempty"`
}
