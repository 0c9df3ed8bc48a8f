package service

import (
	"context"
	"time"

	"roomstay/internal/booking"
	"roomstay/internal/calendar"
	"roomstay/internal/domain"
	"roomstay/internal/events"
	"roomstay/internal/metrics"
	"roomstay/internal/models"

	"github.com/rs/zerolog"
)

type BookingOptions struct {
	// Location decides which calendar day "today" is. Nil means time.Local.
	Location       *time.Location
	MaxAdvanceDays int
	LockTTL        time.Duration
	LockWait       time.Duration
}

type BookingService struct {
	bookings domain.BookingRepository
	rooms    domain.RoomRepository
	eventBus domain.EventPublisher
	clock    calendar.Clock
	loc      *time.Location
	policy   booking.Policy
	locks    roomLocks
	logger   *zerolog.Logger
}

func NewBookingService(
	bookings domain.BookingRepository,
	rooms domain.RoomRepository,
	locker domain.RoomLocker,
	eventBus domain.EventPublisher,
	clock calendar.Clock,
	opts BookingOptions,
	logger *zerolog.Logger,
) *BookingService {
	if clock == nil {
		clock = calendar.SystemClock
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 10 * time.Second
	}
	if opts.LockWait <= 0 {
		opts.LockWait = 3 * time.Second
	}
	return &BookingService{
		bookings: bookings,
		rooms:    rooms,
		eventBus: eventBus,
		clock:    clock,
		loc:      opts.Location,
		policy:   booking.Policy{MaxAdvanceDays: opts.MaxAdvanceDays},
		locks:    roomLocks{locker: locker, ttl: opts.LockTTL, wait: opts.LockWait, logger: logger},
		logger:   logger,
	}
}

// Now reads the injected clock.
func (s *BookingService) Now() time.Time { return s.clock.Now() }

// Today is the current calendar day in the service timezone.
func (s *BookingService) Today() calendar.Date { return s.today(s.clock.Now()) }

func (s *BookingService) today(now time.Time) calendar.Date {
	return calendar.DateOf(now.In(s.loc))
}

// ProposeBooking books room roomID for callerID over [startStr, endStr).
// It returns the persisted booking, a *booking.RejectedError, or an error
// matching booking.ErrStore.
func (s *BookingService) ProposeBooking(ctx context.Context, roomID, callerID int64, startStr, endStr string, now time.Time) (*models.Booking, error) {
	lc := booking.Propose(booking.OpCreate)
	defer s.record(lc, roomID, callerID)

	w, err := booking.ParseWindow(startStr, endStr)
	if err != nil {
		return nil, lc.Reject(err)
	}

	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return nil, lc.Reject(lookupErr("get room", err, "Room"))
	}
	if err := booking.CheckBookerNotOwner(room, callerID); err != nil {
		return nil, lc.Reject(err)
	}
	lc.Validate()

	if err := s.policy.CheckDates(s.today(now), w); err != nil {
		return nil, lc.Reject(err)
	}

	b := &models.Booking{RoomID: roomID, UserID: callerID, StartDate: w.Start, EndDate: w.End}
	err = s.locks.with(ctx, roomID, func() error {
		return s.bookings.CreateBookingWithLock(ctx, b, booking.ConflictGuard(roomID, w, 0))
	})
	if err != nil {
		return nil, lc.Reject(writeErr("create booking", err, "Room"))
	}
	lc.Commit()

	s.publish(events.EventBookingCreated, events.BookingEventPayload{
		BookingID: b.ID,
		RoomID:    b.RoomID,
		UserID:    b.UserID,
		StartDate: b.StartDate,
		EndDate:   b.EndDate,
	})
	return b, nil
}

// ReviseBooking moves the caller's booking to [startStr, endStr). The booking
// keeps its room; its own current dates never conflict with the new ones.
func (s *BookingService) ReviseBooking(ctx context.Context, bookingID, callerID int64, startStr, endStr string, now time.Time) (*models.Booking, error) {
	lc := booking.Propose(booking.OpRevise)
	var roomID int64
	defer func() { s.record(lc, roomID, callerID) }()

	w, err := booking.ParseWindow(startStr, endStr)
	if err != nil {
		return nil, lc.Reject(err)
	}

	existing, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, lc.Reject(lookupErr("get booking", err, "Booking"))
	}
	if err := booking.CheckBookingOwner(existing, callerID); err != nil {
		return nil, lc.Reject(err)
	}
	roomID = existing.RoomID
	lc.Validate()

	if err := s.policy.CheckRevisionDates(s.today(now), existing, w); err != nil {
		return nil, lc.Reject(err)
	}

	prevStart, prevEnd := existing.StartDate, existing.EndDate
	updated := *existing
	updated.StartDate, updated.EndDate = w.Start, w.End

	err = s.locks.with(ctx, roomID, func() error {
		return s.bookings.UpdateBookingDatesWithLock(ctx, &updated, booking.ConflictGuard(roomID, w, existing.ID))
	})
	if err != nil {
		return nil, lc.Reject(writeErr("update booking", err, "Booking"))
	}
	lc.Commit()

	s.publish(events.EventBookingRevised, events.BookingEventPayload{
		BookingID:     updated.ID,
		RoomID:        updated.RoomID,
		UserID:        updated.UserID,
		StartDate:     updated.StartDate,
		EndDate:       updated.EndDate,
		PrevStartDate: &prevStart,
		PrevEndDate:   &prevEnd,
	})
	return &updated, nil
}

// DeleteBooking removes the caller's booking unless its stay has started.
func (s *BookingService) DeleteBooking(ctx context.Context, bookingID, callerID int64, now time.Time) error {
	existing, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return lookupErr("get booking", err, "Booking")
	}
	if err := s.policy.ResolveCancellation(existing, callerID, s.today(now)); err != nil {
		return err
	}
	if err := s.bookings.DeleteBooking(ctx, bookingID); err != nil {
		return writeErr("delete booking", err, "Booking")
	}

	s.publish(events.EventBookingDeleted, events.BookingEventPayload{
		BookingID: existing.ID,
		RoomID:    existing.RoomID,
		UserID:    existing.UserID,
		StartDate: existing.StartDate,
		EndDate:   existing.EndDate,
	})
	return nil
}

func (s *BookingService) ListUserBookings(ctx context.Context, callerID int64) ([]*models.Booking, error) {
	list, err := s.bookings.GetUserBookings(ctx, callerID)
	if err != nil {
		return nil, booking.WrapStore("list user bookings", err)
	}
	if list == nil {
		list = []*models.Booking{}
	}
	return list, nil
}

// RoomBookings is the bookings view of a room. Owners get full bookings with
// guests; everyone else only the occupied windows.
type RoomBookings struct {
	Owner    bool
	Bookings []*models.Booking
	Public   []models.PublicBooking
}

func (s *BookingService) ListRoomBookings(ctx context.Context, roomID, callerID int64) (*RoomBookings, error) {
	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return nil, lookupErr("get room", err, "Room")
	}

	if room.OwnerID == callerID {
		list, err := s.bookings.GetRoomBookingsWithUsers(ctx, roomID)
		if err != nil {
			return nil, booking.WrapStore("list room bookings", err)
		}
		if list == nil {
			list = []*models.Booking{}
		}
		return &RoomBookings{Owner: true, Bookings: list}, nil
	}

	list, err := s.bookings.GetRoomBookings(ctx, roomID)
	if err != nil {
		return nil, booking.WrapStore("list room bookings", err)
	}
	public := make([]models.PublicBooking, 0, len(list))
	for _, b := range list {
		public = append(public, b.Public())
	}
	return &RoomBookings{Public: public}, nil
}

// GetRoomAvailability returns a day-by-day calendar of room starting at
// fromStr, or today when fromStr is empty.
func (s *BookingService) GetRoomAvailability(ctx context.Context, roomID int64, fromStr string, days int, now time.Time) ([]models.DayAvailability, error) {
	from := s.today(now)
	if fromStr != "" {
		parsed, err := calendar.ParseDate(fromStr)
		if err != nil {
			return nil, &booking.RejectedError{
				Kind:    booking.KindInvalidDateFormat,
				Message: booking.ErrInvalidDateFormat.Message,
				Fields:  map[string]string{"from": "from must be a valid YYYY-MM-DD date"},
			}
		}
		from = parsed
	}
	if days <= 0 {
		days = models.DefaultAvailabilityDays
	}
	if days > models.MaxAvailabilityDays {
		return nil, &booking.RejectedError{
			Kind:    booking.KindInvalidRange,
			Message: "days is out of range",
			Fields:  map[string]string{"days": "days must be at most 366"},
		}
	}

	if _, err := s.rooms.GetRoom(ctx, roomID); err != nil {
		return nil, lookupErr("get room", err, "Room")
	}
	list, err := s.bookings.GetRoomBookings(ctx, roomID)
	if err != nil {
		return nil, booking.WrapStore("list room bookings", err)
	}
	return booking.Calendar(list, from, days), nil
}

// ExportRoomBookings returns a room and its bookings for the room owner only.
func (s *BookingService) ExportRoomBookings(ctx context.Context, roomID, callerID int64) (*models.Room, []*models.Booking, error) {
	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return nil, nil, lookupErr("get room", err, "Room")
	}
	if err := booking.CheckRoomOwner(room, callerID); err != nil {
		return nil, nil, err
	}
	list, err := s.bookings.GetRoomBookingsWithUsers(ctx, roomID)
	if err != nil {
		return nil, nil, booking.WrapStore("list room bookings", err)
	}
	return room, list, nil
}

func (s *BookingService) record(lc *booking.Lifecycle, roomID, callerID int64) {
	metrics.IncBookingDecision(string(lc.Op), lc.Outcome())

	event := s.logger.Info()
	if lc.State() == booking.StateRejected {
		event = s.logger.Debug()
		if lc.Reason == "" {
			event = s.logger.Error()
		}
	}
	event.
		Str("operation", string(lc.Op)).
		Str("outcome", lc.Outcome()).
		Str("path", lc.String()).
		Int64("room_id", roomID).
		Int64("caller_id", callerID).
		Msg("Booking decision")
}

func (s *BookingService) publish(eventType string, payload interface{}) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event", eventType).Msg("Failed to publish event")
	}
}
