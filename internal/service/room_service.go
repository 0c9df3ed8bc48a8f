package service

import (
	"context"

	"roomstay/internal/booking"
	"roomstay/internal/domain"
	"roomstay/internal/models"

	"github.com/rs/zerolog"
)

type RoomService struct {
	rooms  domain.RoomRepository
	logger *zerolog.Logger
}

func NewRoomService(rooms domain.RoomRepository, logger *zerolog.Logger) *RoomService {
	return &RoomService{rooms: rooms, logger: logger}
}

func (s *RoomService) ListRooms(ctx context.Context) ([]*models.Room, error) {
	list, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return nil, booking.WrapStore("list rooms", err)
	}
	if list == nil {
		list = []*models.Room{}
	}
	return list, nil
}

// SearchRooms pages through rooms matching filter. Page and size fall back to
// their defaults when unset; size is capped at models.MaxPageSize.
func (s *RoomService) SearchRooms(ctx context.Context, filter models.RoomFilter) ([]*models.Room, models.RoomFilter, error) {
	if filter.Page < 1 {
		filter.Page = models.DefaultPage
	}
	if filter.Size < 1 {
		filter.Size = models.DefaultPageSize
	}
	if filter.Size > models.MaxPageSize {
		filter.Size = models.MaxPageSize
	}

	list, err := s.rooms.SearchRooms(ctx, filter)
	if err != nil {
		return nil, filter, booking.WrapStore("search rooms", err)
	}
	if list == nil {
		list = []*models.Room{}
	}
	return list, filter, nil
}

func (s *RoomService) GetRoomDetail(ctx context.Context, roomID int64) (*models.RoomDetail, error) {
	detail, err := s.rooms.GetRoomDetail(ctx, roomID)
	if err != nil {
		return nil, lookupErr("get room", err, "Room")
	}
	if detail.Images == nil {
		detail.Images = []*models.RoomImage{}
	}
	return detail, nil
}

// CreateRoom stores room with the caller as its owner.
func (s *RoomService) CreateRoom(ctx context.Context, callerID int64, room *models.Room) (*models.Room, error) {
	room.ID = 0
	room.OwnerID = callerID
	if err := s.rooms.CreateRoom(ctx, room); err != nil {
		return nil, booking.WrapStore("create room", err)
	}
	s.logger.Info().Int64("room_id", room.ID).Int64("owner_id", callerID).Msg("Room created")
	return room, nil
}

// AddRoomImage attaches an image URL to a room owned by the caller.
func (s *RoomService) AddRoomImage(ctx context.Context, roomID, callerID int64, url string) (*models.RoomImage, error) {
	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return nil, lookupErr("get room", err, "Room")
	}
	if err := booking.CheckRoomOwner(room, callerID); err != nil {
		return nil, err
	}

	image := &models.RoomImage{RoomID: roomID, UserID: callerID, ImageURL: url}
	if err := s.rooms.AddRoomImage(ctx, image); err != nil {
		return nil, writeErr("add room image", err, "Room")
	}
	return image, nil
}
