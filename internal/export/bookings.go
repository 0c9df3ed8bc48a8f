// Package export renders booking data as spreadsheets for room owners.
package export

import (
	"fmt"

	"roomstay/internal/booking"
	"roomstay/internal/calendar"
	"roomstay/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	bookingsSheet = "Bookings"
	calendarSheet = "Calendar"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Stay states shown in the status column.
const (
	StatusUpcoming   = "Upcoming"
	StatusInProgress = "In progress"
	StatusCompleted  = "Completed"
)

var statusFill = map[string]string{
	StatusUpcoming:   "#C6EFCE",
	StatusInProgress: "#FFEB9C",
	StatusCompleted:  "#FFFFFF",
}

// FileName is the download name of a room's booking export.
func FileName(room *models.Room, today calendar.Date) string {
	return fmt.Sprintf("bookings_room_%d_%s.xlsx", room.ID, today)
}

// StayStatus tells where a booking stands relative to today.
func StayStatus(b *models.Booking, today calendar.Date) string {
	switch {
	case today.Before(b.StartDate):
		return StatusUpcoming
	case today.Before(b.EndDate):
		return StatusInProgress
	default:
		return StatusCompleted
	}
}

// BookingsWorkbook builds a workbook with a bookings table and a day-by-day
// occupancy calendar covering all bookings. The caller closes the file.
func BookingsWorkbook(room *models.Room, bookings []*models.Booking, today calendar.Date) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(bookingsSheet)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	if err := writeBookings(f, room, bookings, today); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := writeCalendar(f, bookings); err != nil {
		_ = f.Close()
		return nil, err
	}

	_ = f.DeleteSheet("Sheet1")
	return f, nil
}

func writeBookings(f *excelize.File, room *models.Room, bookings []*models.Booking, today calendar.Date) error {
	_ = f.SetCellValue(bookingsSheet, "A1", fmt.Sprintf("%s (#%d): %d bookings", room.Name, room.ID, len(bookings)))
	_ = f.MergeCell(bookingsSheet, "A1", "G1")
	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("error creating style: %w", err)
	}
	_ = f.SetCellStyle(bookingsSheet, "A1", "A1", titleStyle)

	headers := []string{"ID", "Guest", "Check-in", "Check-out", "Nights", "Status", "Booked at"}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("error creating style: %w", err)
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(bookingsSheet, cell, h)
		_ = f.SetCellStyle(bookingsSheet, cell, cell, headerStyle)
	}

	styles := make(map[string]int, len(statusFill))
	for status, color := range statusFill {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return fmt.Errorf("error creating style: %w", err)
		}
		styles[status] = id
	}

	for i, b := range bookings {
		row := i + 3
		values := []interface{}{
			b.ID,
			guestName(b),
			b.StartDate.String(),
			b.EndDate.String(),
			b.Nights(),
			StayStatus(b, today),
			b.CreatedAt.Format("2006-01-02 15:04"),
		}
		if err := f.SetSheetRow(bookingsSheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return fmt.Errorf("error writing row %d: %w", row, err)
		}
		cell := fmt.Sprintf("F%d", row)
		_ = f.SetCellStyle(bookingsSheet, cell, cell, styles[StayStatus(b, today)])
	}

	_ = f.SetColWidth(bookingsSheet, "A", "A", 8)
	_ = f.SetColWidth(bookingsSheet, "B", "B", 25)
	_ = f.SetColWidth(bookingsSheet, "C", "F", 14)
	_ = f.SetColWidth(bookingsSheet, "G", "G", 18)
	return nil
}

func writeCalendar(f *excelize.File, bookings []*models.Booking) error {
	if _, err := f.NewSheet(calendarSheet); err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	_ = f.SetCellValue(calendarSheet, "A1", "Date")
	_ = f.SetCellValue(calendarSheet, "B1", "Guest")
	if len(bookings) == 0 {
		return nil
	}

	from, to := bookings[0].StartDate, bookings[0].EndDate
	for _, b := range bookings[1:] {
		if b.StartDate.Before(from) {
			from = b.StartDate
		}
		if b.EndDate.After(to) {
			to = b.EndDate
		}
	}

	bookedStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFC7CE"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("error creating style: %w", err)
	}

	byID := make(map[int64]*models.Booking, len(bookings))
	for _, b := range bookings {
		byID[b.ID] = b
	}
	for i, day := range booking.Calendar(bookings, from, from.DaysUntil(to)) {
		row := i + 2
		_ = f.SetCellValue(calendarSheet, fmt.Sprintf("A%d", row), day.Date.String())
		if !day.Booked {
			continue
		}
		cell := fmt.Sprintf("B%d", row)
		_ = f.SetCellValue(calendarSheet, cell, guestName(byID[day.BookingID]))
		_ = f.SetCellStyle(calendarSheet, cell, cell, bookedStyle)
	}

	_ = f.SetColWidth(calendarSheet, "A", "A", 14)
	_ = f.SetColWidth(calendarSheet, "B", "B", 25)
	return nil
}

func guestName(b *models.Booking) string {
	if b == nil {
		return ""
	}
	if b.User == nil {
		return fmt.Sprintf("User #%d", b.UserID)
	}
	return b.User.FirstName + " " + b.User.LastName
}
