package handlers

import (
	"context"
	"net/http"

	"github.com/courseplatform/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// LessonService is the interface that wraps methods for lesson operations
type LessonService interface {
	// List retrieves the lessons of a course visible to the actor
	//
	// "ctx" is the context for the request.
	// "actor" is the caller; anonymous or not enrolled callers only get preview lessons.
	// "courseID" is the ID of the course.
	//
	// Returns a list of lessons and an error if any.
	List(ctx context.Context, actor models.Actor, courseID int) ([]models.Lesson, error)
	// Get retrieves one lesson of a course
	//
	// "ctx" is the context for the request.
	// "actor" is the caller.
	// "courseID" is the ID of the course.
	// "lessonID" is the ID of the lesson.
	//
	// Returns the lesson and an error if any.
	Get(ctx context.Context, actor models.Actor, courseID, lessonID int) (*models.Lesson, error)
	// Create adds a lesson at the end of a course
	Create(ctx context.Context, actor models.Actor, courseID int, req *models.CreateLessonRequest) (*models.Lesson, error)
	// Update applies a partial update to a lesson
	Update(ctx context.Context, actor models.Actor, lessonID int, req *models.UpdateLessonRequest) (*models.Lesson, error)
	// Reorder sets the lesson order of a course
	Reorder(ctx context.Context, actor models.Actor, courseID int, lessonIDs []int) ([]models.Lesson, error)
	// Delete deletes a lesson
	Delete(ctx context.Context, actor models.Actor, lessonID int) error
}

// LessonHandler handles HTTP requests for lesson operations
type LessonHandler struct {
	BaseHandler
	service LessonService
}

// NewLessonHandler creates a new lesson handler
func NewLessonHandler(svc LessonService, logger *zap.Logger) *LessonHandler {
	return &LessonHandler{
		service:     svc,
		BaseHandler: BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all lesson handler routes
func (h *LessonHandler) RegisterRoutes(r chi.Router, optionalAuth, instructorMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(optionalAuth)
		r.Get("/courses/{courseID}/lessons", h.ListLessons)
		r.Get("/courses/{courseID}/lessons/{lessonID}", h.GetLesson)
	})
	r.Group(func(r chi.Router) {
		r.Use(instructorMiddleware)
		r.Post("/courses/{courseID}/lessons", h.CreateLesson)
		r.Patch("/courses/{courseID}/lessons/reorder", h.ReorderLessons)
		r.Put("/lessons/{lessonID}", h.UpdateLesson)
		r.Delete("/lessons/{lessonID}", h.DeleteLesson)
	})
}

// ListLessons handles GET /courses/{courseID}/lessons
// @Summary List lessons of a course
// @Description Enrolled users, the course owner and admins get every lesson; everyone else gets preview lessons
// @Tags lessons
// @Produce json
// @Param courseID path int true "Course ID"
// @Success 200 {array} models.Lesson "Lessons in order"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{courseID}/lessons [get]
func (h *LessonHandler) ListLessons(w http.ResponseWriter, r *http.Request) {
	courseID, ok := h.pathID(w, r, "courseID", "course")
	if !ok {
		return
	}

	lessons, err := h.service.List(r.Context(), actorFromRequest(r), courseID)
	if err != nil {
		h.RespondServiceError(w, err, "list lessons")
		return
	}

	h.RespondJSON(w, http.StatusOK, lessons)
}

// GetLesson handles GET /courses/{courseID}/lessons/{lessonID}
// @Summary Get a lesson
// @Tags lessons
// @Produce json
// @Param courseID path int true "Course ID"
// @Param lessonID path int true "Lesson ID"
// @Success 200 {object} models.Lesson "Lesson"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 403 {object} map[string]string "Enrollment required"
// @Failure 404 {object} map[string]string "Lesson not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{courseID}/lessons/{lessonID} [get]
func (h *LessonHandler) GetLesson(w http.ResponseWriter, r *http.Request) {
	courseID, ok := h.pathID(w, r, "courseID", "course")
	if !ok {
		return
	}
	lessonID, ok := h.pathID(w, r, "lessonID", "lesson")
	if !ok {
		return
	}

	lesson, err := h.service.Get(r.Context(), actorFromRequest(r), courseID, lessonID)
	if err != nil {
		h.RespondServiceError(w, err, "get lesson")
		return
	}

	h.RespondJSON(w, http.StatusOK, lesson)
}

// CreateLesson handles POST /courses/{courseID}/lessons
// @Summary Create a lesson
// @Description Append a lesson to a course; the order index is assigned by the server
// @Tags lessons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseID path int true "Course ID"
// @Param request body models.CreateLessonRequest true "Lesson"
// @Success 201 {object} models.Lesson "Created lesson"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{courseID}/lessons [post]
func (h *LessonHandler) CreateLesson(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	courseID, ok := h.pathID(w, r, "courseID", "course")
	if !ok {
		return
	}

	var req models.CreateLessonRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	lesson, err := h.service.Create(r.Context(), actor, courseID, &req)
	if err != nil {
		h.RespondServiceError(w, err, "create lesson")
		return
	}

	h.RespondJSON(w, http.StatusCreated, lesson)
}

// ReorderLessons handles PATCH /courses/{courseID}/lessons/reorder
// @Summary Reorder lessons
// @Description Set the lesson order of a course; every lesson of the course must be listed once
// @Tags lessons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseID path int true "Course ID"
// @Param request body models.ReorderLessonsRequest true "Lesson IDs in their new order"
// @Success 200 {array} models.Lesson "Lessons in their new order"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{courseID}/lessons/reorder [patch]
func (h *LessonHandler) ReorderLessons(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	courseID, ok := h.pathID(w, r, "courseID", "course")
	if !ok {
		return
	}

	var req models.ReorderLessonsRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	lessons, err := h.service.Reorder(r.Context(), actor, courseID, req.LessonIDs)
	if err != nil {
		h.RespondServiceError(w, err, "reorder lessons")
		return
	}

	h.RespondJSON(w, http.StatusOK, lessons)
}

// UpdateLesson handles PUT /lessons/{lessonID}
// @Summary Update a lesson
// @Tags lessons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param lessonID path int true "Lesson ID"
// @Param request body models.UpdateLessonRequest true "Fields to change"
// @Success 200 {object} models.Lesson "Updated lesson"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Lesson not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /lessons/{lessonID} [put]
func (h *LessonHandler) UpdateLesson(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	lessonID, ok := h.pathID(w, r, "lessonID", "lesson")
	if !ok {
		return
	}

	var req models.UpdateLessonRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	lesson, err := h.service.Update(r.Context(), actor, lessonID, &req)
	if err != nil {
		h.RespondServiceError(w, err, "update lesson")
		return
	}

	h.RespondJSON(w, http.StatusOK, lesson)
}

// DeleteLesson handles DELETE /lessons/{lessonID}
// @Summary Delete a lesson
// @Tags lessons
// @Security BearerAuth
// @Param lessonID path int true "Lesson ID"
// @Success 204 "No content"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Lesson not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /lessons/{lessonID} [delete]
func (h *LessonHandler) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	lessonID, ok := h.pathID(w, r, "lessonID", "lesson")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), actor, lessonID); err != nil {
		h.RespondServiceError(w, err, "delete lesson")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
