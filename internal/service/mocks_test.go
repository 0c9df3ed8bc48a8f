package service

import (
	"context"
	"time"

	"roomstay/internal/domain"
	"roomstay/internal/models"

	"github.com/stretchr/testify/mock"
)

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockBookingRepo) GetRoomBookings(ctx context.Context, roomID int64) ([]*models.Booking, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *mockBookingRepo) GetRoomBookingsWithUsers(ctx context.Context, roomID int64) ([]*models.Booking, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *mockBookingRepo) GetUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

// existing holds the room bookings handed to guards, like the store does
// inside its transaction.
func (m *mockBookingRepo) CreateBookingWithLock(ctx context.Context, b *models.Booking, guard domain.BookingGuard) error {
	args := m.Called(ctx, b)
	if existing, ok := args.Get(1).([]*models.Booking); ok {
		if err := guard(existing); err != nil {
			return err
		}
	}
	if err := args.Error(0); err != nil {
		return err
	}
	b.ID = 100
	return nil
}

func (m *mockBookingRepo) UpdateBookingDatesWithLock(ctx context.Context, b *models.Booking, guard domain.BookingGuard) error {
	args := m.Called(ctx, b)
	if existing, ok := args.Get(1).([]*models.Booking); ok {
		if err := guard(existing); err != nil {
			return err
		}
	}
	return args.Error(0)
}

func (m *mockBookingRepo) DeleteBooking(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockRoomRepo struct {
	mock.Mock
}

func (m *mockRoomRepo) GetRoom(ctx context.Context, id int64) (*models.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}

func (m *mockRoomRepo) GetRoomDetail(ctx context.Context, id int64) (*models.RoomDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RoomDetail), args.Error(1)
}

func (m *mockRoomRepo) ListRooms(ctx context.Context) ([]*models.Room, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Room), args.Error(1)
}

func (m *mockRoomRepo) SearchRooms(ctx context.Context, filter models.RoomFilter) ([]*models.Room, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Room), args.Error(1)
}

func (m *mockRoomRepo) CreateRoom(ctx context.Context, room *models.Room) error {
	if err := m.Called(ctx, room).Error(0); err != nil {
		return err
	}
	room.ID = 10
	return nil
}

func (m *mockRoomRepo) AddRoomImage(ctx context.Context, image *models.RoomImage) error {
	return m.Called(ctx, image).Error(0)
}

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) GetReview(ctx context.Context, id int64) (*models.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *mockReviewRepo) GetRoomReviews(ctx context.Context, roomID int64) ([]*models.Review, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Review), args.Error(1)
}

func (m *mockReviewRepo) FindOrCreateReview(ctx context.Context, review *models.Review) (bool, error) {
	args := m.Called(ctx, review)
	return args.Bool(0), args.Error(1)
}

func (m *mockReviewRepo) UpdateReview(ctx context.Context, review *models.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *mockReviewRepo) DeleteReview(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockReviewRepo) AddReviewImageWithLimit(ctx context.Context, image *models.ReviewImage, max int) error {
	return m.Called(ctx, image, max).Error(0)
}

type mockLocker struct {
	mock.Mock
}

func (m *mockLocker) AcquireRoomLock(ctx context.Context, roomID int64, ttl time.Duration) (string, bool, error) {
	args := m.Called(ctx, roomID, ttl)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockLocker) ReleaseRoomLock(ctx context.Context, roomID int64, token string) error {
	return m.Called(ctx, roomID, token).Error(0)
}

type mockEventBus struct {
	mock.Mock
}

func (m *mockEventBus) PublishJSON(et string, p interface{}) error { return m.Called(et, p).Error(0) }
