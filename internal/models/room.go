package models

import "time"

type Room struct {
	ID           int64     `json:"id" yaml:"id"`
	OwnerID      int64     `json:"ownerId" yaml:"owner_id"`
	Address      string    `json:"address" yaml:"address"`
	City         string    `json:"city" yaml:"city"`
	State        string    `json:"state" yaml:"state"`
	Country      string    `json:"country" yaml:"country"`
	Lat          float64   `json:"lat" yaml:"lat"`
	Lng          float64   `json:"lng" yaml:"lng"`
	Name         string    `json:"name" yaml:"name"`
	Description  string    `json:"description" yaml:"description"`
	Price        float64   `json:"price" yaml:"price"`
	PreviewImage string    `json:"previewImage,omitempty" yaml:"preview_image"`
	CreatedAt    time.Time `json:"createdAt" yaml:"-"`
	UpdatedAt    time.Time `json:"updatedAt" yaml:"-"`
}

// Summary is the room shape embedded in a caller's booking list.
func (r *Room) Summary() *RoomSummary {
	return &RoomSummary{
		ID:           r.ID,
		OwnerID:      r.OwnerID,
		Address:      r.Address,
		City:         r.City,
		State:        r.State,
		Country:      r.Country,
		Lat:          r.Lat,
		Lng:          r.Lng,
		Name:         r.Name,
		Price:        r.Price,
		PreviewImage: r.PreviewImage,
	}
}

type RoomSummary struct {
	ID           int64   `json:"id"`
	OwnerID      int64   `json:"ownerId"`
	Address      string  `json:"address"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	Country      string  `json:"country"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	PreviewImage string  `json:"previewImage,omitempty"`
}

// RoomDetail is a room with its review aggregate, images and owner.
type RoomDetail struct {
	Room
	NumReviews    int          `json:"numReviews"`
	AvgStarRating *float64     `json:"avgStarRating"`
	Images        []*RoomImage `json:"images"`
	Owner         *UserSummary `json:"Owner,omitempty"`
}

type RoomImage struct {
	ID        int64     `json:"id"`
	RoomID    int64     `json:"roomId"`
	UserID    int64     `json:"userId"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// RoomFilter narrows a room search. Nil bounds are not applied.
type RoomFilter struct {
	Page     int
	Size     int
	MinLat   *float64
	MaxLat   *float64
	MinLng   *float64
	MaxLng   *float64
	MinPrice *float64
	MaxPrice *float64
}

// Offset returns the row offset of the page, pages start at 1.
func (f RoomFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Size
}
