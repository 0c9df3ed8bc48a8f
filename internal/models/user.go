package models

import "time"

type User struct {
	ID        int64     `json:"id" yaml:"id"`
	FirstName string    `json:"firstName" yaml:"first_name"`
	LastName  string    `json:"lastName" yaml:"last_name"`
	Email     string    `json:"email" yaml:"email"`
	Username  string    `json:"username" yaml:"username"`
	CreatedAt time.Time `json:"createdAt" yaml:"-"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"-"`
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName}
}

// UserSummary is the public part of a user embedded in bookings and reviews.
type UserSummary struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}
