package domain

import (
	"context"
	"time"

	"roomstay/internal/models"
)

// BookingGuard inspects the bookings of a room inside the write transaction
// and returns a non-nil error to abort the write.
type BookingGuard func(existing []*models.Booking) error

type BookingRepository interface {
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetRoomBookings(ctx context.Context, roomID int64) ([]*models.Booking, error)
	GetRoomBookingsWithUsers(ctx context.Context, roomID int64) ([]*models.Booking, error)
	GetUserBookings(ctx context.Context, userID int64) ([]*models.Booking, error)
	CreateBookingWithLock(ctx context.Context, booking *models.Booking, guard BookingGuard) error
	UpdateBookingDatesWithLock(ctx context.Context, booking *models.Booking, guard BookingGuard) error
	DeleteBooking(ctx context.Context, id int64) error
}

type RoomRepository interface {
	GetRoom(ctx context.Context, id int64) (*models.Room, error)
	GetRoomDetail(ctx context.Context, id int64) (*models.RoomDetail, error)
	ListRooms(ctx context.Context) ([]*models.Room, error)
	SearchRooms(ctx context.Context, filter models.RoomFilter) ([]*models.Room, error)
	CreateRoom(ctx context.Context, room *models.Room) error
	AddRoomImage(ctx context.Context, image *models.RoomImage) error
}

type ReviewRepository interface {
	GetReview(ctx context.Context, id int64) (*models.Review, error)
	GetRoomReviews(ctx context.Context, roomID int64) ([]*models.Review, error)
	// FindOrCreateReview inserts review unless the user already reviewed the
	// room. created is false when an existing review was found.
	FindOrCreateReview(ctx context.Context, review *models.Review) (created bool, err error)
	UpdateReview(ctx context.Context, review *models.Review) error
	DeleteReview(ctx context.Context, id int64) error
	// AddReviewImageWithLimit stores image unless the user already has max review images.
	AddReviewImageWithLimit(ctx context.Context, image *models.ReviewImage, max int) error
}

type UserRepository interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// RoomLocker coordinates booking writers across processes.
type RoomLocker interface {
	// AcquireRoomLock returns a token and true when the lock was taken.
	AcquireRoomLock(ctx context.Context, roomID int64, ttl time.Duration) (string, bool, error)
	ReleaseRoomLock(ctx context.Context, roomID int64, token string) error
}

// RateLimiter counts requests of a caller in a fixed window.
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, callerID int64, limit int, window time.Duration) (bool, error)
}

// CoordinationStore is the shared state backing locks and limits.
type CoordinationStore interface {
	RoomLocker
	RateLimiter
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
