package api

import (
	"net/http"

	"roomstay/internal/models"
)

type reviewsResponse struct {
	Reviews []*models.Review `json:"Reviews"`
}

func (s *HTTPServer) handleListReviews(w http.ResponseWriter, r *http.Request) {
	roomID, ok := idParam(w, r, "roomId", "Room")
	if !ok {
		return
	}

	list, err := s.deps.Reviews.ListRoomReviews(r.Context(), roomID)
	if err != nil {
		respondFailure(w, r, s.log, err)
		return
	}
	respond(w, r, http.StatusOK, reviewsResponse{Reviews: list})
}

func (s *HTTPServer) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	roomID, ok := idParam(w, r, "roomId", "Room")
	if !ok {
		return
	}
	var req ReviewRequest
	if !s.validate.decodeAndValidate(w, r, &req) {
		return
	}

	review, err := s.deps.Reviews.CreateReview(r.Context(), roomID, callerID(r.Context()), req.Review, req.Stars)
	if err != nil {
		respondFailure(w, r, s.log, err)
		return
	}
	respond(w, r, http.StatusCreated, review)
}

func (s *HTTPServer) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	roomID, ok := idParam(w, r, "roomId", "Room")
	if !ok {
		return
	}
	reviewID, ok := idParam(w, r, "reviewId", "Review")
	if !ok {
		return
	}
	var req ReviewRequest
	if !s.validate.decodeAndValidate(w, r, &req) {
		return
	}

	review, err := s.deps.Reviews.UpdateReview(r.Context(), roomID, reviewID, callerID(r.Context()), req.Review, req.Stars)
	if err != nil {
		respondFailure(w, r, s.log, err)
		return
	}
	respond(w, r, http.StatusOK, review)
}

func (s *HTTPServer) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	roomID, ok := idParam(w, r, "roomId", "Room")
	if !ok {
		return
	}
	reviewID, ok := idParam(w, r, "reviewId", "Review")
	if !ok {
		return
	}

	if err := s.deps.Reviews.DeleteReview(r.Context(), roomID, reviewID, callerID(r.Context())); err != nil {
		respondFailure(w, r, s.log, err)
		return
	}
	respond(w, r, http.StatusOK, MessageResponse{Message: "Successfully deleted", StatusCode: http.StatusOK})
}

func (s *HTTPServer) handleAddReviewImage(w http.ResponseWriter, r *http.Request) {
	roomID, ok := idParam(w, r, "roomId", "Room")
	if !ok {
		return
	}
	reviewID, ok := idParam(w, r, "reviewId", "Review")
	if !ok {
		return
	}
	var req ImageRequest
	if !s.validate.decodeAndValidate(w, r, &req) {
		return
	}

	img, err := s.deps.Reviews.AddReviewImage(r.Context(), roomID, reviewID, callerID(r.Context()), req.URL)
	if err != nil {
		respondFailure(w, r, s.log, err)
		return
	}
	respond(w, r, http.StatusCreated, img)
}
