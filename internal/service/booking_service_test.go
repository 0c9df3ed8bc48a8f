package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"roomstay/internal/booking"
	"roomstay/internal/calendar"
	"roomstay/internal/database"
	"roomstay/internal/domain"
	"roomstay/internal/events"
	"roomstay/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

type bookingFixture struct {
	bookings *mockBookingRepo
	rooms    *mockRoomRepo
	bus      *mockEventBus
	svc      *BookingService
}

func newBookingFixture(t *testing.T, locker domain.RoomLocker) *bookingFixture {
	t.Helper()
	logger := zerolog.New(io.Discard)
	f := &bookingFixture{
		bookings: new(mockBookingRepo),
		rooms:    new(mockRoomRepo),
		bus:      new(mockEventBus),
	}
	opts := BookingOptions{Location: time.UTC, MaxAdvanceDays: 365, LockWait: 30 * time.Millisecond}
	f.svc = NewBookingService(f.bookings, f.rooms, locker, f.bus, calendar.NewFixedClock(testNow), opts, &logger)
	return f
}

func testRoom() *models.Room {
	return &models.Room{ID: 1, OwnerID: 1, Name: "Garden Loft", Price: 120}
}

func testBooking(id, roomID, userID int64, start, end string) *models.Booking {
	return &models.Booking{
		ID:        id,
		RoomID:    roomID,
		UserID:    userID,
		StartDate: calendar.MustParse(start),
		EndDate:   calendar.MustParse(end),
	}
}

func TestProposeBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("Persisted", func(t *testing.T) {
		f := newBookingFixture(t, nil)
		f.rooms.On("GetRoom", mock.Anything, int64(1)).Return(testRoom(), nil).Once()
		f.bookings.On("CreateBookingWithLock", mock.Anything, mock.AnythingOfType("*models.Booking")).
			Return(nil, []*models.Booking{testBooking(7, 1, 3, "2024-01-20", "2024-02-01")}).Once()
		f.bus.On("PublishJSON", events.EventBookingCreated, mock.MatchedBy(func(p events.BookingEventPayload) bool {
			return p.BookingID == 100 && p.StartDate.String() == "2024-02-01" && p.PrevStartDate == nil
		})).Return(nil).Once()

		b, err := f.svc.ProposeBooking(ctx, 1, 2, "2024-02-01", "2024-02-05", f.svc.Now())
		require.NoError(t, err)
		assert.Equal(t, int64(100), b.ID)
		assert.Equal(t, int64(2), b.UserID)
		assert.Equal(t, "2024-02-05", b.EndDate.String())
		f.rooms.AssertExpectations(t)
		f.bookings.AssertExpectations(t)
		f.bus.AssertExpectations(t)
	})

	t.Run("InvalidDateFormat", func(t *testing.T) {
		f := newBookingFixture(t, nil)

		_, err := f.svc.ProposeBooking(ctx, 1, 2, "2024-13-01", "2024-02-05", testNow)
		require.Error(t, err)
		assert.True(t, errors.Is(err, booking.ErrInvalidDateFormat))

		var rej *booking.RejectedError
		require.True(t, errors.As(err, &rej))
		assert.Contains(t, rej.Fields, "startDate")
		f.rooms.AssertNotCalled(t, "GetRoom", mock.Anything, mock.Anything)
	})

	t.Run("InvalidRange", func(t *testing.T) {
		f := newBookingFixture(t, nil)

		_, err := f.svc.ProposeBooking(ctx, 1, 2, "2024-02-05", "2024-02-05", testNow)
		assert.True(t, errors.Is(err, booking.ErrInvalidRange))
	})

	t.Run("RoomNotFound", func(t *testing.T) {
		f := newBookingFixture(t, nil)
		f.rooms.On("GetRoom", mock.Anything, int64(9)).Return(nil, database.ErrNotFound).Once()

		_, err := f.svc.ProposeBooking(ctx, 9, 2, "2024-02-01", "2024-02-05", testNow)
		assert.True(t, errors.Is(err, booking.ErrNotFound))
		assert.EqualError(t, err, "NotFound: Room couldn't be found")
	})

	t.Run("OwnerRejectedForAnyWindow", func(t *testing.T) {
		f := newBookingFixture(t, nil)
		f.rooms.On("GetRoom", mock.Anything, int64(1)).Return(testRoom(), nil)

		_, err := f.svc.ProposeBooking(ctx, 1, 1, "2024-02-01", "2024-02-05", testNow)
		assert.True(t, errors.Is(err, booking.ErrOwnRoomBooking))

		_, err = f.svc.ProposeBooking(ctx, 1, 1, "2023-02-01", "2023-02-05", testNow)
		assert.True(t, errors.Is(err, booking.ErrOwnRoomBooking))
		f.bookings.AssertNotCalled(t, "CreateBookingWithLock", mock.Anything, mock.Anything)
	})

	t.Run("PastBooking", func(t *testing.T) {
		f := newBookingFixture(t, nil)
		f.rooms.On("GetRoom", mock.Anything, int64(1)).Return(testRoom(), nil)

		_, err := f.svc.ProposeBooking(ctx, 1, 2, "2024-01-10", "2024-01-12", testNow)
		assert.True(t, errors.Is(err, booking.ErrPastBooking))

		_, err = f.svc.ProposeBooking(ctx, 1, 2, "2024-01-01", "2024-01-03", testNow)
		assert.True(t, errors.Is(err, booking.ErrPastBooking))
		f.bookings.AssertNotCalled(t, "CreateBookingWithLock", mock.Anything, mock.Anything)
	})

	t.Run("TooFarAhead", func(t *testing.T) {
		f := newBookingFixture(t, nil)
		f.rooms.On("GetRoom", mock.Anything, int64(1)).Return(testRoom(), nil).Once()

		_, err := f.svc.ProposeBooking(ctx, 1, 2, "2026-01-01", "2026-01-03", testNow)
		assert.True(t, errors.Is(err, booking.ErrInvalidRange))
	})

	t.Run("Conflict", func(t *testing.T) {
		f := newBookingFixture(t, nil)
		f.rooms.On("GetRoom", mock.Anything, int64(1)).Return(testRoom(), nil).Once()
		f.bookings.On("CreateBookingWithLock", mock.Anything, mock.Anything).
			Return(nil, []*models.Booking{testBooking(7, 1, 3, "2024-02-03", "2024-02-08")}).Once()

		_, err := f.svc.ProposeBooking(ctx, 1, 2, "2024-02-01", "2024-02-05", testNow)
		require.Error(t, err)
		assert.True(t, errors.Is(err, booking.ErrConflict))

		var rej *booking.RejectedError
		require.True(t, errors.As(err, &rej))
		assert.Equal(t, int64(7), rej.ConflictID)
		f.bus.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything)
	})

	t.Run("OverlapTrigger", func(t *testing.T) {
		f := newBookingFixture(t, nil)
		f.rooms.On("GetRoom", mock.Anything, int64(1)).Return(testRoom(), nil).Once()
		f.bookings.On("CreateBookingWithLock", mock.Anything, mock.Anything).
			Return(database.ErrOverlap, nil).Once()

		_, err := f.svc.ProposeBooking(ctx, 1, 2, "2024-02-01", "2024-02-05", testNow)
		assert.True(t, errors.Is(err, booking.ErrConflict))
	})

	t.Run("StoreFailure", func(t *testing.T) {
		f := newBookingFixture(t, nil)
		f.rooms.On("GetRoom", mock.Anything, int64(1)).Return(nil, errors.New("disk I/O error")).Once()

		_, err := f.svc.ProposeBooking(ctx, 1, 2, "2024-02-01", "2024-02-05", testNow)
		require.Error(t, err)
		assert.True(t, errors.Is(err, booking.ErrStore))
		assert.Equal(t, booking.Kind(""), booking.KindOf(err))
	})
}

func TestProposeBookingRoomLock(t *testing.T) {
	ctx := context.Background()

	t.Run("AcquiredAndReleased", func(t *testing.T) {
		locker := new(mockLocker)
		f := newBookingFixture(t, locker)
		f.rooms.On("GetRoom", mock.Anything, int64(1)).Return(testRoom(), nil).Once()
		locker.On("AcquireRoomLock", mock.Anything, int64(1), 10*time.Second).Return("tok", true, nil).Once()
		locker.On("ReleaseRoomLock", mock.Anything, int64(1), "tok").Return(nil).Once()
		f.bookings.On("CreateBookingWithLock", mock.Anything, mock.Anything).Return(nil, nil).Once()
		f.bus.On("PublishJSON", mock.Anything, mock.Anything).Return(nil).Once()

		_, err := f.svc.ProposeBooking(ctx, 1, 2, "2024-02-01", "2024-02-05", testNow)
		require.NoError(t, err)
		locker.AssertExpectations(t)
	})

	t.Run("Busy", func(t *testing.T) {
		locker := new(mockLocker)
		f := newBookingFixture(t, locker)
		f.rooms.On("GetRoom", mock.Anything, int64(1)).Return(testRoom(), nil).Once()
		locker.On("AcquireRoomLock", mock.Anything, int64(1), mock.Anything).Return("", false, nil)

		_, err := f.svc.ProposeBooking(ctx, 1, 2, "2024-02-01", "2024-02-05", testNow)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrRoomBusy))
		assert.True(t, errors.Is(err, booking.ErrStore))
		f.bookings.AssertNotCalled(t, "CreateBookingWithLock", mock.Anything, mock.Anything)
	})

	t.Run("LockerDown", func(t *testing.T) {
		locker := new(mockLocker)
		f := newBookingFixture(t, locker)
		f.rooms.On("GetRoom", mock.Anything, int64(1)).Return(testRoom(), nil).Once()
		locker.On("AcquireRoomLock", mock.Anything, int64(1), mock.Anything).Return("", false, errors.New("connection refused")).Once()
		f.bookings.On("CreateBookingWithLock", mock.Anything, mock.Anything).Return(nil, nil).Once()
		f.bus.On("PublishJSON", mock.Anything, mock.Anything).Return(nil).Once()

		_, err := f.svc.ProposeBooking(ctx, 1, 2, "2024-02-01", "2024-02-05", testNow)
		require.NoError(t, err)
		locker.AssertNotCalled(t, "ReleaseRoomLock", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestReviseBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("Updated", func(t *testing.T) {
		f := newBookingFixture(t, nil)
		existing := testBooking(5, 1, 2, "2024-02-01", "2024-02-05")
		f.bookings.On("GetBooking", mock.Anything, int64(5)).Return(existing, nil).Once()
		f.bookings.On("UpdateBookingDatesWithLock", mock.Anything, mock.AnythingOfType("*models.Booking")).
			Return(nil, []*models.Booking{existing, testBooking(8, 1, 3, "2024-02-07", "2024-02-09")}).Once()
		f.bus.On("PublishJSON", events.EventBookingRevised, mock.MatchedBy(func(p events.BookingEventPayload) bool {
			return p.PrevStartDate != nil && p.PrevStartDate.String() == "2024-02-01" && p.StartDate.String() == "2024-02-03"
		})).Return(nil).Once()

		b, err := f.svc.ReviseBooking(ctx, 5, 2, "2024-02-03", "2024-02-07", testNow)
		require.NoError(t, err)
		assert.Equal(t, int64(5), b.ID)
		assert.Equal(t, "2024-02-03", b.StartDate.String())
		assert.Equal(t, "2024-02-01", existing.StartDate.String())
		f.bus.AssertExpectations(t)
	})

	t.Run("InvalidDateFormatBeforeLookup", func(t *testing.T) {
		f := newBookingFixture(t, nil)

		_, err := f.svc.ReviseBooking(ctx, 5, 2, "02/03/2024", "2024-02-07", testNow)
		assert.True(t, errors.Is(err, booking.ErrInvalidDateFormat))
		f.bookings.AssertNotCalled(t, "GetBooking", mock.Anything, mock.Anything)
	})

	t.Run("NotOwner", func(t *testing.T) {
		f := newBookingFixture(t, nil)
		f.bookings.On("GetBooking", mock.Anything, int64(5)).Return(testBooking(5, 1, 2, "2024-02-01", "2024-02-05"), nil).Once()

		_, err := f.svc.ReviseBooking(ctx, 5, 3, "2024-02-03", "2024-02-07", testNow)
		assert.True(t, errors.Is(err, booking.ErrNotFound))
	})

	t.Run("Missing", func(t *testing.T) {
		f := newBookingFixture(t, nil)
		f.bookings.On("GetBooking", mock.Anything, int64(6)).Return(nil, database.ErrNotFound).Once()

		_, err := f.svc.ReviseBooking(ctx, 6, 2, "2024-02-03", "2024-02-07", testNow)
		assert.EqualError(t, err, "NotFound: Booking couldn't be found")
	})

	t.Run("AlreadyStarted", func(t *testing.T) {
		f := newBookingFixture(t, nil)
		f.bookings.On("GetBooking", mock.Anything, int64(5)).Return(testBooking(5, 1, 2, "2024-01-09", "2024-01-15"), nil).Once()

		_, err := f.svc.ReviseBooking(ctx, 5, 2, "2024-02-03", "2024-02-07", testNow)
		assert.True(t, errors.Is(err, booking.ErrPastBooking))
	})

	t.Run("MovedIntoPast", func(t *testing.T) {
		f := newBookingFixture(t, nil)
		f.bookings.On("GetBooking", mock.Anything, int64(5)).Return(testBooking(5, 1, 2, "2024-02-01", "2024-02-05"), nil).Once()

		_, err := f.svc.ReviseBooking(ctx, 5, 2, "2024-01-05", "2024-01-12", testNow)
		assert.True(t, errors.Is(err, booking.ErrPastBooking))
	})

	t.Run("ConflictWithOtherBooking", func(t *testing.T) {
		f := newBookingFixture(t, nil)
		existing := testBooking(5, 1, 2, "2024-02-01", "2024-02-05")
		f.bookings.On("GetBooking", mock.Anything, int64(5)).Return(existing, nil).Once()
		f.bookings.On("UpdateBookingDatesWithLock", mock.Anything, mock.Anything).
			Return(nil, []*models.Booking{existing, testBooking(8, 1, 3, "2024-02-06", "2024-02-09")}).Once()

		_, err := f.svc.ReviseBooking(ctx, 5, 2, "2024-02-03", "2024-02-07", testNow)
		var rej *booking.RejectedError
		require.True(t, errors.As(err, &rej))
		assert.Equal(t, booking.KindConflict, rej.Kind)
		assert.Equal(t, int64(8), rej.ConflictID)
	})
}

func TestDeleteBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("Deleted", func(t *testing.T) {
		f := newBookingFixture(t, nil)
		f.bookings.On("GetBooking", mock.Anything, int64(5)).Return(testBooking(5, 1, 2, "2024-02-01", "2024-02-05"), nil).Once()
		f.bookings.On("DeleteBooking", mock.Anything, int64(5)).Return(nil).Once()
		f.bus.On("PublishJSON", events.EventBookingDeleted, mock.Anything).Return(nil).Once()

		require.NoError(t, f.svc.DeleteBooking(ctx, 5, 2, testNow))
		f.bookings.AssertExpectations(t)
		f.bus.AssertExpectations(t)
	})

	t.Run("Started", func(t *testing.T) {
		f := newBookingFixture(t, nil)
		f.bookings.On("GetBooking", mock.Anything, int64(5)).Return(testBooking(5, 1, 2, "2024-01-10", "2024-01-12"), nil).Once()

		err := f.svc.DeleteBooking(ctx, 5, 2, testNow)
		assert.True(t, errors.Is(err, booking.ErrPastBooking))
		f.bookings.AssertNotCalled(t, "DeleteBooking", mock.Anything, mock.Anything)
	})

	t.Run("OtherUser", func(t *testing.T) {
		f := newBookingFixture(t, nil)
		f.bookings.On("GetBooking", mock.Anything, int64(5)).Return(testBooking(5, 1, 2, "2024-02-01", "2024-02-05"), nil).Once()

		err := f.svc.DeleteBooking(ctx, 5, 3, testNow)
		assert.True(t, errors.Is(err, booking.ErrNotFound))
	})
}

func TestListRoomBookings(t *testing.T) {
	ctx := context.Background()
	list := []*models.Booking{testBooking(5, 1, 2, "2024-02-01", "2024-02-05")}
	list[0].User = &models.UserSummary{ID: 2, FirstName: "Gus", LastName: "Guest"}

	t.Run("Owner", func(t *testing.T) {
		f := newBookingFixture(t, nil)
		f.rooms.On("GetRoom", mock.Anything, int64(1)).Return(testRoom(), nil).Once()
		f.bookings.On("GetRoomBookingsWithUsers", mock.Anything, int64(1)).Return(list, nil).Once()

		res, err := f.svc.ListRoomBookings(ctx, 1, 1)
		require.NoError(t, err)
		assert.True(t, res.Owner)
		require.Len(t, res.Bookings, 1)
		assert.Equal(t, "Gus", res.Bookings[0].User.FirstName)
	})

	t.Run("Guest", func(t *testing.T) {
		f := newBookingFixture(t, nil)
		f.rooms.On("GetRoom", mock.Anything, int64(1)).Return(testRoom(), nil).Once()
		f.bookings.On("GetRoomBookings", mock.Anything, int64(1)).Return(list, nil).Once()

		res, err := f.svc.ListRoomBookings(ctx, 1, 3)
		require.NoError(t, err)
		assert.False(t, res.Owner)
		assert.Nil(t, res.Bookings)
		assert.Equal(t, []models.PublicBooking{list[0].Public()}, res.Public)
	})

	t.Run("UnknownRoom", func(t *testing.T) {
		f := newBookingFixture(t, nil)
		f.rooms.On("GetRoom", mock.Anything, int64(4)).Return(nil, database.ErrNotFound).Once()

		_, err := f.svc.ListRoomBookings(ctx, 4, 3)
		assert.True(t, errors.Is(err, booking.ErrNotFound))
	})
}

func TestListUserBookings(t *testing.T) {
	f := newBookingFixture(t, nil)
	f.bookings.On("GetUserBookings", mock.Anything, int64(2)).Return(nil, nil).Once()

	list, err := f.svc.ListUserBookings(context.Background(), 2)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestGetRoomAvailability(t *testing.T) {
	ctx := context.Background()

	t.Run("Calendar", func(t *testing.T) {
		f := newBookingFixture(t, nil)
		f.rooms.On("GetRoom", mock.Anything, int64(1)).Return(testRoom(), nil).Once()
		f.bookings.On("GetRoomBookings", mock.Anything, int64(1)).
			Return([]*models.Booking{testBooking(5, 1, 2, "2024-01-11", "2024-01-12")}, nil).Once()

		days, err := f.svc.GetRoomAvailability(ctx, 1, "", 3, testNow)
		require.NoError(t, err)
		require.Len(t, days, 3)
		assert.Equal(t, "2024-01-10", days[0].Date.String())
		assert.False(t, days[0].Booked)
		assert.True(t, days[1].Booked)
		assert.Equal(t, int64(5), days[1].BookingID)
		assert.False(t, days[2].Booked)
	})

	t.Run("DefaultDays", func(t *testing.T) {
		f := newBookingFixture(t, nil)
		f.rooms.On("GetRoom", mock.Anything, int64(1)).Return(testRoom(), nil).Once()
		f.bookings.On("GetRoomBookings", mock.Anything, int64(1)).Return(nil, nil).Once()

		days, err := f.svc.GetRoomAvailability(ctx, 1, "2024-03-01", 0, testNow)
		require.NoError(t, err)
		assert.Len(t, days, models.DefaultAvailabilityDays)
		assert.Equal(t, "2024-03-01", days[0].Date.String())
	})

	t.Run("BadFrom", func(t *testing.T) {
		f := newBookingFixture(t, nil)

		_, err := f.svc.GetRoomAvailability(ctx, 1, "soon", 3, testNow)
		assert.True(t, errors.Is(err, booking.ErrInvalidDateFormat))
	})

	t.Run("TooManyDays", func(t *testing.T) {
		f := newBookingFixture(t, nil)

		_, err := f.svc.GetRoomAvailability(ctx, 1, "", models.MaxAvailabilityDays+1, testNow)
		assert.True(t, errors.Is(err, booking.ErrInvalidRange))
	})
}

func TestExportRoomBookings(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t, nil)
	f.rooms.On("GetRoom", mock.Anything, int64(1)).Return(testRoom(), nil)
	f.bookings.On("GetRoomBookingsWithUsers", mock.Anything, int64(1)).Return([]*models.Booking{}, nil).Once()

	room, list, err := f.svc.ExportRoomBookings(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "Garden Loft", room.Name)
	assert.Empty(t, list)

	_, _, err = f.svc.ExportRoomBookings(ctx, 1, 2)
	assert.True(t, errors.Is(err, booking.ErrNotFound))
}
