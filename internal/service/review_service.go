package service

import (
	"context"

	"roomstay/internal/booking"
	"roomstay/internal/domain"
	"roomstay/internal/events"
	"roomstay/internal/models"

	"github.com/rs/zerolog"
)

type ReviewService struct {
	reviews  domain.ReviewRepository
	rooms    domain.RoomRepository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewReviewService(reviews domain.ReviewRepository, rooms domain.RoomRepository, eventBus domain.EventPublisher, logger *zerolog.Logger) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		rooms:    rooms,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *ReviewService) ListRoomReviews(ctx context.Context, roomID int64) ([]*models.Review, error) {
	if _, err := s.rooms.GetRoom(ctx, roomID); err != nil {
		return nil, lookupErr("get room", err, "Room")
	}
	list, err := s.reviews.GetRoomReviews(ctx, roomID)
	if err != nil {
		return nil, booking.WrapStore("list reviews", err)
	}
	if list == nil {
		list = []*models.Review{}
	}
	return list, nil
}

// CreateReview stores the caller's review of a room. Owners cannot review
// their rooms and each user reviews a room at most once.
func (s *ReviewService) CreateReview(ctx context.Context, roomID, callerID int64, text string, stars int) (*models.Review, error) {
	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return nil, lookupErr("get room", err, "Room")
	}
	if err := booking.CheckReviewerNotOwner(room, callerID); err != nil {
		return nil, err
	}

	review := &models.Review{RoomID: roomID, UserID: callerID, Review: text, Stars: stars}
	created, err := s.reviews.FindOrCreateReview(ctx, review)
	if err != nil {
		return nil, booking.WrapStore("create review", err)
	}
	if !created {
		return nil, booking.ErrDuplicateReview
	}

	if s.eventBus != nil {
		payload := events.ReviewEventPayload{ReviewID: review.ID, RoomID: roomID, UserID: callerID, Stars: stars}
		if err := s.eventBus.PublishJSON(events.EventReviewCreated, payload); err != nil {
			s.logger.Error().Err(err).Int64("review_id", review.ID).Msg("Failed to publish review event")
		}
	}
	return review, nil
}

// authored loads review reviewID of room roomID written by callerID.
func (s *ReviewService) authored(ctx context.Context, roomID, reviewID, callerID int64) (*models.Review, error) {
	review, err := s.reviews.GetReview(ctx, reviewID)
	if err != nil {
		return nil, lookupErr("get review", err, "Review")
	}
	if roomID != 0 && review.RoomID != roomID {
		return nil, booking.NotFound("Review")
	}
	if err := booking.CheckReviewAuthor(review, callerID); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) UpdateReview(ctx context.Context, roomID, reviewID, callerID int64, text string, stars int) (*models.Review, error) {
	review, err := s.authored(ctx, roomID, reviewID, callerID)
	if err != nil {
		return nil, err
	}
	review.Review = text
	review.Stars = stars
	if err := s.reviews.UpdateReview(ctx, review); err != nil {
		return nil, writeErr("update review", err, "Review")
	}
	return review, nil
}

func (s *ReviewService) DeleteReview(ctx context.Context, roomID, reviewID, callerID int64) error {
	if _, err := s.authored(ctx, roomID, reviewID, callerID); err != nil {
		return err
	}
	if err := s.reviews.DeleteReview(ctx, reviewID); err != nil {
		return writeErr("delete review", err, "Review")
	}
	return nil
}

// AddReviewImage attaches an image URL to the caller's review. A user holds
// at most models.MaxReviewImages review images.
func (s *ReviewService) AddReviewImage(ctx context.Context, roomID, reviewID, callerID int64, url string) (*models.ReviewImage, error) {
	if _, err := s.authored(ctx, roomID, reviewID, callerID); err != nil {
		return nil, err
	}
	image := &models.ReviewImage{ReviewID: reviewID, UserID: callerID, ImageURL: url}
	if err := s.reviews.AddReviewImageWithLimit(ctx, image, models.MaxReviewImages); err != nil {
		return nil, writeErr("add review image", err, "Review")
	}
	return image, nil
}
