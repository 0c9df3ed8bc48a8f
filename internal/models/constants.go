package models

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 20

	// MaxReviewImages caps the images a single user may attach to reviews.
	MaxReviewImages = 10

	MaxRoomNameLength = 50

	DefaultAvailabilityDays = 30
	MaxAvailabilityDays     = 366
)
