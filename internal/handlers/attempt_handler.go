package handlers

import (
	"context"
	"net/http"

	"github.com/courseplatform/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AttemptService is the interface that wraps methods for quiz attempt operations
type AttemptService interface {
	// Submit scores a submission and records it as a new attempt
	//
	// "ctx" is the context for the request.
	// "quizID" is the ID of the quiz.
	// "userID" is the ID of the submitting user.
	// "req" holds the submitted answers.
	// "revealCorrect" keeps the correct option IDs on the returned answers.
	//
	// Returns the recorded attempt and an error if any.
	Submit(ctx context.Context, quizID, userID int, req *models.SubmitQuizRequest, revealCorrect bool) (*models.QuizAttempt, error)
	// ListByQuiz retrieves every attempt of a quiz for the course owner or an admin
	ListByQuiz(ctx context.Context, actor models.Actor, quizID int) ([]models.QuizAttempt, error)
	// ListMine retrieves a user's own attempts of a quiz
	ListMine(ctx context.Context, quizID, userID int) ([]models.QuizAttempt, error)
}

// AttemptHandler handles HTTP requests for quiz attempts
type AttemptHandler struct {
	BaseHandler
	service          AttemptService
	revealToStudents bool
}

// NewAttemptHandler creates a new attempt handler.
// revealToStudents controls whether students see the correct options on their own submission result.
func NewAttemptHandler(svc AttemptService, revealToStudents bool, logger *zap.Logger) *AttemptHandler {
	return &AttemptHandler{
		service:          svc,
		revealToStudents: revealToStudents,
		BaseHandler:      BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all attempt handler routes
func (h *AttemptHandler) RegisterRoutes(r chi.Router, authMiddleware, instructorMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/quizzes/{quizID}/submit", h.SubmitQuiz)
		r.Get("/quizzes/{quizID}/attempts/me", h.ListMyAttempts)
	})
	r.Group(func(r chi.Router) {
		r.Use(instructorMiddleware)
		r.Get("/quizzes/{quizID}/attempts", h.ListAttempts)
	})
}

// SubmitQuiz handles POST /quizzes/{quizID}/submit
// @Summary Submit a quiz
// @Description Score the submitted answers and record a new attempt. Unanswered questions count as wrong
// @Tags attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param quizID path int true "Quiz ID"
// @Param request body models.SubmitQuizRequest true "Answers"
// @Success 201 {object} models.QuizAttempt "Recorded attempt"
// @Failure 400 {object} map[string]string "Answer outside the quiz"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not enrolled"
// @Failure 404 {object} map[string]string "Quiz not found"
// @Failure 409 {object} map[string]string "Already submitted and retries are disabled"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /quizzes/{quizID}/submit [post]
func (h *AttemptHandler) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	quizID, ok := h.pathID(w, r, "quizID", "quiz")
	if !ok {
		return
	}

	var req models.SubmitQuizRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	reveal := actor.Role >= models.RoleInstructor || h.revealToStudents
	attempt, err := h.service.Submit(r.Context(), quizID, actor.UserID, &req, reveal)
	if err != nil {
		h.RespondServiceError(w, err, "submit quiz")
		return
	}

	h.RespondJSON(w, http.StatusCreated, attempt)
}

// ListAttempts handles GET /quizzes/{quizID}/attempts
// @Summary List every attempt of a quiz
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param quizID path int true "Quiz ID"
// @Success 200 {array} models.QuizAttempt "Attempts in submission order"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Quiz not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /quizzes/{quizID}/attempts [get]
func (h *AttemptHandler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	quizID, ok := h.pathID(w, r, "quizID", "quiz")
	if !ok {
		return
	}

	attempts, err := h.service.ListByQuiz(r.Context(), actor, quizID)
	if err != nil {
		h.RespondServiceError(w, err, "list attempts")
		return
	}

	h.RespondJSON(w, http.StatusOK, attempts)
}

// ListMyAttempts handles GET /quizzes/{quizID}/attempts/me
// @Summary List my attempts of a quiz
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param quizID path int true "Quiz ID"
// @Success 200 {array} models.QuizAttempt "Attempts in submission order"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Quiz not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /quizzes/{quizID}/attempts/me [get]
func (h *AttemptHandler) ListMyAttempts(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	quizID, ok := h.pathID(w, r, "quizID", "quiz")
	if !ok {
		return
	}

	attempts, err := h.service.ListMine(r.Context(), quizID, actor.UserID)
	if err != nil {
		h.RespondServiceError(w, err, "list my attempts")
		return
	}

	h.RespondJSON(w, http.StatusOK, attempts)
}
