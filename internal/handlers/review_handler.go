package handlers

import (
	"context"
	"net/http"

	"github.com/courseplatform/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ReviewService is the interface that wraps methods for review operations
type ReviewService interface {
	List(ctx context.Context, courseID int) ([]models.Review, error)
	Create(ctx context.Context, actor models.Actor, courseID int, req *models.CreateReviewRequest) (*models.Review, error)
	Update(ctx context.Context, actor models.Actor, reviewID int, req *models.UpdateReviewRequest) (*models.Review, error)
	Delete(ctx context.Context, actor models.Actor, reviewID int) error
}

// ReviewHandler handles HTTP requests for course reviews
type ReviewHandler struct {
	BaseHandler
	service ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(svc ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		service:     svc,
		BaseHandler: BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all review handler routes
func (h *ReviewHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Get("/courses/{courseID}/reviews", h.ListReviews)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/courses/{courseID}/reviews", h.CreateReview)
		r.Put("/reviews/{reviewID}", h.UpdateReview)
		r.Delete("/reviews/{reviewID}", h.DeleteReview)
	})
}

// ListReviews handles GET /courses/{courseID}/reviews
// @Summary List reviews of a course
// @Tags reviews
// @Produce json
// @Param courseID path int true "Course ID"
// @Success 200 {array} models.Review "Reviews, newest first"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{courseID}/reviews [get]
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	courseID, ok := h.pathID(w, r, "courseID", "course")
	if !ok {
		return
	}

	reviews, err := h.service.List(r.Context(), courseID)
	if err != nil {
		h.RespondServiceError(w, err, "list reviews")
		return
	}

	h.RespondJSON(w, http.StatusOK, reviews)
}

// CreateReview handles POST /courses/{courseID}/reviews
// @Summary Review a course
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseID path int true "Course ID"
// @Param request body models.CreateReviewRequest true "Review"
// @Success 201 {object} models.Review "Created review"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not enrolled"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 409 {object} map[string]string "Already reviewed"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{courseID}/reviews [post]
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	courseID, ok := h.pathID(w, r, "courseID", "course")
	if !ok {
		return
	}

	var req models.CreateReviewRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	review, err := h.service.Create(r.Context(), actor, courseID, &req)
	if err != nil {
		h.RespondServiceError(w, err, "create review")
		return
	}

	h.RespondJSON(w, http.StatusCreated, review)
}

// UpdateReview handles PUT /reviews/{reviewID}
// @Summary Update a review
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param reviewID path int true "Review ID"
// @Param request body models.UpdateReviewRequest true "Fields to change"
// @Success 200 {object} models.Review "Updated review"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Review not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /reviews/{reviewID} [put]
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	reviewID, ok := h.pathID(w, r, "reviewID", "review")
	if !ok {
		return
	}

	var req models.UpdateReviewRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	review, err := h.service.Update(r.Context(), actor, reviewID, &req)
	if err != nil {
		h.RespondServiceError(w, err, "update review")
		return
	}

	h.RespondJSON(w, http.StatusOK, review)
}

// DeleteReview handles DELETE /reviews/{reviewID}
// @Summary Delete a review
// @Tags reviews
// @Security BearerAuth
// @Param reviewID path int true "Review ID"
// @Success 204 "No content"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Review not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /reviews/{reviewID} [delete]
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	reviewID, ok := h.pathID(w, r, "reviewID", "review")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), actor, reviewID); err != nil {
		h.RespondServiceError(w, err, "delete review")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
