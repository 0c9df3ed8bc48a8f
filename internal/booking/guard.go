package booking

import "roomstay/internal/models"

// CheckBookerNotOwner rejects a booking of a room by its owner.
func CheckBookerNotOwner(room *models.Room, callerID int64) error {
	if room.OwnerID == callerID {
		return ErrOwnRoomBooking
	}
	return nil
}

// CheckBookingOwner hides bookings of other users behind NotFound so their
// existence is not revealed.
func CheckBookingOwner(b *models.Booking, callerID int64) error {
	if b == nil || b.UserID != callerID {
		return NotFound("Booking")
	}
	return nil
}

// CheckReviewerNotOwner rejects a review of a room by its owner.
func CheckReviewerNotOwner(room *models.Room, callerID int64) error {
	if room.OwnerID == callerID {
		return ErrOwnRoomReview
	}
	return nil
}

// CheckReviewAuthor hides reviews of other users behind NotFound.
func CheckReviewAuthor(r *models.Review, callerID int64) error {
	if r == nil || r.UserID != callerID {
		return NotFound("Review")
	}
	return nil
}

// CheckRoomOwner hides owner-only room operations behind NotFound.
func CheckRoomOwner(room *models.Room, callerID int64) error {
	if room == nil || room.OwnerID != callerID {
		return NotFound("Room")
	}
	return nil
}

// CheckImageQuota rejects an image upload once the user has max images.
func CheckImageQuota(count, max int) error {
	if count >= max {
		return ErrMaxImages
	}
	return nil
}
