package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/courseplatform/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CourseService is the interface that wraps methods for course catalog operations
type CourseService interface {
	// ListPublished retrieves the published course catalog
	//
	// "ctx" is the context for the request.
	// "filter" holds the filters and the page to retrieve.
	//
	// Returns a list of courses and an error if any.
	ListPublished(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	// ListManaged retrieves the courses the actor may manage
	//
	// "ctx" is the context for the request.
	// "actor" is the caller.
	// "filter" holds the filters and the page to retrieve.
	//
	// Returns a list of courses and an error if any.
	ListManaged(ctx context.Context, actor models.Actor, filter models.CourseFilter) ([]models.Course, error)
	// Get retrieves a course visible to the actor
	Get(ctx context.Context, actor models.Actor, id int) (*models.Course, error)
	// Create creates a course owned by the actor
	Create(ctx context.Context, actor models.Actor, req *models.CreateCourseRequest) (*models.Course, error)
	// Update applies a partial update to a course managed by the actor
	Update(ctx context.Context, actor models.Actor, id int, req *models.UpdateCourseRequest) (*models.Course, error)
	// Delete deletes a course managed by the actor
	Delete(ctx context.Context, actor models.Actor, id int) error
}

// CourseHandler handles HTTP requests for course operations
type CourseHandler struct {
	BaseHandler
	service CourseService
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(svc CourseService, logger *zap.Logger) *CourseHandler {
	return &CourseHandler{
		service:     svc,
		BaseHandler: BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all course handler routes
func (h *CourseHandler) RegisterRoutes(r chi.Router, optionalAuth, authMiddleware, instructorMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(optionalAuth)
		r.Get("/courses", h.ListCourses)
		r.Get("/courses/{courseID}", h.GetCourse)
	})
	r.Group(func(r chi.Router) {
		r.Use(instructorMiddleware)
		r.Post("/courses", h.CreateCourse)
	})
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Put("/courses/{courseID}", h.UpdateCourse)
		r.Delete("/courses/{courseID}", h.DeleteCourse)
	})
}

// parseCourseFilter reads the catalog query parameters
func parseCourseFilter(r *http.Request) models.CourseFilter {
	q := r.URL.Query()
	filter := models.CourseFilter{
		Category: q.Get("category"),
		Level:    models.CourseLevel(q.Get("level")),
		Search:   q.Get("search"),
	}
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		filter.Page = p
	}
	if c, err := strconv.Atoi(q.Get("count")); err == nil && c > 0 {
		filter.Count = c
	}
	return filter
}

// ListCourses handles GET /courses
// @Summary List courses
// @Description List published courses. With mine=true, instructors list their own courses and admins list every course, published or not
// @Tags courses
// @Produce json
// @Param category query string false "Category"
// @Param level query string false "Level (beginner, intermediate, advanced)"
// @Param search query string false "Search in title and subtitle"
// @Param mine query bool false "List managed courses instead of the catalog"
// @Param page query int false "Page number (default: 1)"
// @Param count query int false "Items per page (default: 20, max: 100)"
// @Success 200 {array} models.Course "List of courses"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses [get]
func (h *CourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	filter := parseCourseFilter(r)

	var (
		courses []models.Course
		err     error
	)
	if r.URL.Query().Get("mine") == "true" {
		actor, ok := h.requireActor(w, r)
		if !ok {
			return
		}
		courses, err = h.service.ListManaged(r.Context(), actor, filter)
	} else {
		courses, err = h.service.ListPublished(r.Context(), filter)
	}
	if err != nil {
		h.RespondServiceError(w, err, "list courses")
		return
	}
	if courses == nil {
		courses = []models.Course{}
	}

	h.RespondJSON(w, http.StatusOK, courses)
}

// GetCourse handles GET /courses/{courseID}
// @Summary Get a course
// @Description Get a published course, or an unpublished one managed by the caller
// @Tags courses
// @Produce json
// @Param courseID path int true "Course ID"
// @Success 200 {object} models.Course "Course"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{courseID} [get]
func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	courseID, ok := h.pathID(w, r, "courseID", "course")
	if !ok {
		return
	}

	course, err := h.service.Get(r.Context(), actorFromRequest(r), courseID)
	if err != nil {
		h.RespondServiceError(w, err, "get course")
		return
	}

	h.RespondJSON(w, http.StatusOK, course)
}

// CreateCourse handles POST /courses
// @Summary Create a course
// @Description Create a course owned by the calling instructor
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateCourseRequest true "Course"
// @Success 201 {object} models.Course "Created course"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses [post]
func (h *CourseHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}

	var req models.CreateCourseRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	course, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		h.RespondServiceError(w, err, "create course")
		return
	}

	h.RespondJSON(w, http.StatusCreated, course)
}

// UpdateCourse handles PUT /courses/{courseID}
// @Summary Update a course
// @Description Partially update a course; publishing is done by setting isPublished
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseID path int true "Course ID"
// @Param request body models.UpdateCourseRequest true "Fields to change"
// @Success 200 {object} models.Course "Updated course"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{courseID} [put]
func (h *CourseHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	courseID, ok := h.pathID(w, r, "courseID", "course")
	if !ok {
		return
	}

	var req models.UpdateCourseRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	course, err := h.service.Update(r.Context(), actor, courseID, &req)
	if err != nil {
		h.RespondServiceError(w, err, "update course")
		return
	}

	h.RespondJSON(w, http.StatusOK, course)
}

// DeleteCourse handles DELETE /courses/{courseID}
// @Summary Delete a course
// @Description Delete a course with its lessons, quizzes, enrollments and reviews
// @Tags courses
// @Security BearerAuth
// @Param courseID path int true "Course ID"
// @Success 204 "No content"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{courseID} [delete]
func (h *CourseHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	courseID, ok := h.pathID(w, r, "courseID", "course")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), actor, courseID); err != nil {
		h.RespondServiceError(w, err, "delete course")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
