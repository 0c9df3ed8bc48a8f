package models

import "time"

type Review struct {
	ID        int64     `json:"id"`
	RoomID    int64     `json:"roomId"`
	UserID    int64     `json:"userId"`
	Review    string    `json:"review"`
	Stars     int       `json:"stars"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	User   *UserSummary   `json:"User,omitempty"`
	Images []*ReviewImage `json:"images,omitempty"`
}

type ReviewImage struct {
	ID        int64     `json:"id"`
	ReviewID  int64     `json:"reviewId"`
	UserID    int64     `json:"userId"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
}
