package handlers

import (
	"context"
	"net/http"

	"github.com/courseplatform/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// EnrollmentService is the interface that wraps methods for enrollment operations
type EnrollmentService interface {
	// Enroll enrolls a user in a published course
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "courseID" is the ID of the course.
	//
	// Returns the enrollment and an error if any.
	Enroll(ctx context.Context, userID, courseID int) (*models.Enrollment, error)
	// CompleteLesson marks a lesson as completed by an enrolled user
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "courseID" is the ID of the course.
	// "lessonID" is the ID of the lesson.
	//
	// Returns the completion and an error if any.
	CompleteLesson(ctx context.Context, userID, courseID, lessonID int) (*models.LessonCompletion, error)
}

// ProgressService is the interface that wraps methods for progress operations
type ProgressService interface {
	// Progress computes a user's progress through a course
	Progress(ctx context.Context, userID, courseID int) (*models.CourseProgress, error)
	// MyEnrollments retrieves every enrollment of a user with its course and progress
	MyEnrollments(ctx context.Context, userID int) ([]models.EnrollmentWithProgress, error)
}

// CertificateService is the interface that wraps the certificate eligibility check
type CertificateService interface {
	Eligibility(ctx context.Context, userID, courseID int) (*models.CertificateEligibility, error)
}

// EnrollmentHandler handles HTTP requests for enrollments, lesson completion and progress
type EnrollmentHandler struct {
	BaseHandler
	enrollments  EnrollmentService
	progress     ProgressService
	certificates CertificateService
}

// NewEnrollmentHandler creates a new enrollment handler
func NewEnrollmentHandler(enrollments EnrollmentService, progress ProgressService, certificates CertificateService, logger *zap.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollments:  enrollments,
		progress:     progress,
		certificates: certificates,
		BaseHandler:  BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all enrollment handler routes
func (h *EnrollmentHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/courses/{courseID}/enroll", h.Enroll)
		r.Get("/enrollments/me", h.MyEnrollments)
		r.Post("/courses/{courseID}/lessons/{lessonID}/complete", h.CompleteLesson)
		r.Get("/courses/{courseID}/progress", h.GetProgress)
		r.Get("/courses/{courseID}/certificate", h.GetCertificate)
	})
}

// Enroll handles POST /courses/{courseID}/enroll
// @Summary Enroll in a course
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param courseID path int true "Course ID"
// @Success 201 {object} models.Enrollment "Enrollment"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Course not published"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 409 {object} map[string]string "Already enrolled"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{courseID}/enroll [post]
func (h *EnrollmentHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	courseID, ok := h.pathID(w, r, "courseID", "course")
	if !ok {
		return
	}

	enrollment, err := h.enrollments.Enroll(r.Context(), actor.UserID, courseID)
	if err != nil {
		h.RespondServiceError(w, err, "enroll")
		return
	}

	h.RespondJSON(w, http.StatusCreated, enrollment)
}

// MyEnrollments handles GET /enrollments/me
// @Summary List my enrollments
// @Description List the caller's enrollments with their course and progress
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.EnrollmentWithProgress "Enrollments"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /enrollments/me [get]
func (h *EnrollmentHandler) MyEnrollments(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}

	items, err := h.progress.MyEnrollments(r.Context(), actor.UserID)
	if err != nil {
		h.RespondServiceError(w, err, "list enrollments")
		return
	}

	h.RespondJSON(w, http.StatusOK, items)
}

// CompleteLesson handles POST /courses/{courseID}/lessons/{lessonID}/complete
// @Summary Complete a lesson
// @Description Mark a lesson as completed; completing it again has no further effect
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param courseID path int true "Course ID"
// @Param lessonID path int true "Lesson ID"
// @Success 200 {object} models.LessonCompletion "Completion"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not enrolled"
// @Failure 404 {object} map[string]string "Lesson not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{courseID}/lessons/{lessonID}/complete [post]
func (h *EnrollmentHandler) CompleteLesson(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	courseID, ok := h.pathID(w, r, "courseID", "course")
	if !ok {
		return
	}
	lessonID, ok := h.pathID(w, r, "lessonID", "lesson")
	if !ok {
		return
	}

	completion, err := h.enrollments.CompleteLesson(r.Context(), actor.UserID, courseID, lessonID)
	if err != nil {
		h.RespondServiceError(w, err, "complete lesson")
		return
	}

	h.RespondJSON(w, http.StatusOK, completion)
}

// GetProgress handles GET /courses/{courseID}/progress
// @Summary Get my progress in a course
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param courseID path int true "Course ID"
// @Success 200 {object} models.CourseProgress "Progress"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{courseID}/progress [get]
func (h *EnrollmentHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	courseID, ok := h.pathID(w, r, "courseID", "course")
	if !ok {
		return
	}

	progress, err := h.progress.Progress(r.Context(), actor.UserID, courseID)
	if err != nil {
		h.RespondServiceError(w, err, "get progress")
		return
	}

	h.RespondJSON(w, http.StatusOK, progress)
}

// GetCertificate handles GET /courses/{courseID}/certificate
// @Summary Check certificate eligibility
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param courseID path int true "Course ID"
// @Success 200 {object} models.CertificateEligibility "Eligibility"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not enrolled"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{courseID}/certificate [get]
func (h *EnrollmentHandler) GetCertificate(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	courseID, ok := h.pathID(w, r, "courseID", "course")
	if !ok {
		return
	}

	eligibility, err := h.certificates.Eligibility(r.Context(), actor.UserID, courseID)
	if err != nil {
		h.RespondServiceError(w, err, "check certificate eligibility")
		return
	}

	h.RespondJSON(w, http.StatusOK, eligibility)
}
