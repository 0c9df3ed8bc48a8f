package export

import (
	"bytes"
	"testing"

	"roomstay/internal/calendar"
	"roomstay/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testBookings() []*models.Booking {
	return []*models.Booking{
		{
			ID: 1, RoomID: 1, UserID: 2,
			StartDate: calendar.MustParse("2024-01-05"),
			EndDate:   calendar.MustParse("2024-01-08"),
			User:      &models.UserSummary{ID: 2, FirstName: "Gus", LastName: "Guest"},
		},
		{
			ID: 2, RoomID: 1, UserID: 3,
			StartDate: calendar.MustParse("2024-01-10"),
			EndDate:   calendar.MustParse("2024-01-12"),
		},
	}
}

func TestStayStatus(t *testing.T) {
	b := testBookings()[0]

	assert.Equal(t, StatusUpcoming, StayStatus(b, calendar.MustParse("2024-01-04")))
	assert.Equal(t, StatusInProgress, StayStatus(b, calendar.MustParse("2024-01-05")))
	assert.Equal(t, StatusInProgress, StayStatus(b, calendar.MustParse("2024-01-07")))
	assert.Equal(t, StatusCompleted, StayStatus(b, calendar.MustParse("2024-01-08")))
}

func TestBookingsWorkbook(t *testing.T) {
	room := &models.Room{ID: 1, Name: "Garden Loft"}
	today := calendar.MustParse("2024-01-06")

	f, err := BookingsWorkbook(room, testBookings(), today)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{bookingsSheet, calendarSheet}, f.GetSheetList())

	rows, err := f.GetRows(bookingsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Garden Loft (#1): 2 bookings", rows[0][0])
	assert.Equal(t, "Guest", rows[1][1])
	assert.Equal(t, []string{"1", "Gus Guest", "2024-01-05", "2024-01-08", "3", StatusInProgress}, rows[2][:6])
	assert.Equal(t, "User #3", rows[3][1])
	assert.Equal(t, StatusUpcoming, rows[3][5])

	cal, err := f.GetRows(calendarSheet)
	require.NoError(t, err)
	// header + 2024-01-05 .. 2024-01-11
	require.Len(t, cal, 8)
	assert.Equal(t, []string{"2024-01-05", "Gus Guest"}, cal[1])
	assert.Equal(t, []string{"2024-01-08"}, cal[4])
	assert.Equal(t, []string{"2024-01-11", "User #3"}, cal[7])

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	reopened, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer reopened.Close()
	v, err := reopened.GetCellValue(bookingsSheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "Gus Guest", v)
}

func TestBookingsWorkbookEmpty(t *testing.T) {
	f, err := BookingsWorkbook(&models.Room{ID: 4, Name: "Attic"}, nil, calendar.MustParse("2024-01-06"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(calendarSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, "bookings_room_4_2024-01-06.xlsx", FileName(&models.Room{ID: 4}, calendar.MustParse("2024-01-06")))
}
