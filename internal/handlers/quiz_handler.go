package handlers

import (
	"context"
	"net/http"

	"github.com/courseplatform/backend/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// QuizService is the interface that wraps methods for quiz catalog operations
type QuizService interface {
	// Create creates a quiz, optionally with questions, in a course managed by the actor
	//
	// "ctx" is the context for the request.
	// "actor" is the caller.
	// "courseID" is the ID of the course.
	// "req" is the quiz to create.
	//
	// Returns the created quiz and an error if any.
	Create(ctx context.Context, actor models.Actor, courseID int, req *models.CreateQuizRequest) (*models.Quiz, error)
	// AddQuestion appends a question to a quiz
	//
	// "ctx" is the context for the request.
	// "actor" is the caller.
	// "quizID" is the ID of the quiz.
	// "req" is the question to add.
	//
	// Returns the created question and an error if any.
	AddQuestion(ctx context.Context, actor models.Actor, quizID int, req *models.CreateQuestionRequest) (*models.Question, error)
	// List retrieves the quizzes of a course
	List(ctx context.Context, actor models.Actor, courseID int) ([]models.QuizListItem, error)
	// Get retrieves a quiz with its questions; correctness is hidden from non-managers
	Get(ctx context.Context, actor models.Actor, quizID int) (*models.Quiz, error)
	// Delete deletes a quiz of a course
	Delete(ctx context.Context, actor models.Actor, courseID, quizID int) error
}

// QuizHandler handles HTTP requests for quiz catalog operations
type QuizHandler struct {
	BaseHandler
	service QuizService
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(svc QuizService, logger *zap.Logger) *QuizHandler {
	return &QuizHandler{
		service:     svc,
		BaseHandler: BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all quiz handler routes
func (h *QuizHandler) RegisterRoutes(r chi.Router, optionalAuth, instructorMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(optionalAuth)
		r.Get("/courses/{courseID}/quizzes", h.ListQuizzes)
		r.Get("/quizzes/{quizID}", h.GetQuiz)
	})
	r.Group(func(r chi.Router) {
		r.Use(instructorMiddleware)
		r.Post("/courses/{courseID}/quizzes", h.CreateQuiz)
		r.Delete("/courses/{courseID}/quizzes/{quizID}", h.DeleteQuiz)
		r.Post("/quizzes/{quizID}/questions", h.AddQuestion)
	})
}

// ListQuizzes handles GET /courses/{courseID}/quizzes
// @Summary List quizzes of a course
// @Tags quizzes
// @Produce json
// @Param courseID path int true "Course ID"
// @Success 200 {array} models.QuizListItem "Quizzes"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{courseID}/quizzes [get]
func (h *QuizHandler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	courseID, ok := h.pathID(w, r, "courseID", "course")
	if !ok {
		return
	}

	quizzes, err := h.service.List(r.Context(), actorFromRequest(r), courseID)
	if err != nil {
		h.RespondServiceError(w, err, "list quizzes")
		return
	}

	h.RespondJSON(w, http.StatusOK, quizzes)
}

// GetQuiz handles GET /quizzes/{quizID}
// @Summary Get a quiz
// @Description Get a quiz with its questions and options; option correctness is only returned to the course owner and admins
// @Tags quizzes
// @Produce json
// @Param quizID path int true "Quiz ID"
// @Success 200 {object} models.Quiz "Quiz"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 404 {object} map[string]string "Quiz not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /quizzes/{quizID} [get]
func (h *QuizHandler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	quizID, ok := h.pathID(w, r, "quizID", "quiz")
	if !ok {
		return
	}

	quiz, err := h.service.Get(r.Context(), actorFromRequest(r), quizID)
	if err != nil {
		h.RespondServiceError(w, err, "get quiz")
		return
	}

	h.RespondJSON(w, http.StatusOK, quiz)
}

// CreateQuiz handles POST /courses/{courseID}/quizzes
// @Summary Create a quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseID path int true "Course ID"
// @Param request body models.CreateQuizRequest true "Quiz with optional questions"
// @Success 201 {object} models.Quiz "Created quiz"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{courseID}/quizzes [post]
func (h *QuizHandler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	courseID, ok := h.pathID(w, r, "courseID", "course")
	if !ok {
		return
	}

	var req models.CreateQuizRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	quiz, err := h.service.Create(r.Context(), actor, courseID, &req)
	if err != nil {
		h.RespondServiceError(w, err, "create quiz")
		return
	}

	h.RespondJSON(w, http.StatusCreated, quiz)
}

// AddQuestion handles POST /quizzes/{quizID}/questions
// @Summary Add a question to a quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param quizID path int true "Quiz ID"
// @Param request body models.CreateQuestionRequest true "Question with at least two options"
// @Success 201 {object} models.Question "Created question"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Quiz not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /quizzes/{quizID}/questions [post]
func (h *QuizHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	quizID, ok := h.pathID(w, r, "quizID", "quiz")
	if !ok {
		return
	}

	var req models.CreateQuestionRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	question, err := h.service.AddQuestion(r.Context(), actor, quizID, &req)
	if err != nil {
		h.RespondServiceError(w, err, "add question")
		return
	}

	h.RespondJSON(w, http.StatusCreated, question)
}

// DeleteQuiz handles DELETE /courses/{courseID}/quizzes/{quizID}
// @Summary Delete a quiz
// @Tags quizzes
// @Security BearerAuth
// @Param courseID path int true "Course ID"
// @Param quizID path int true "Quiz ID"
// @Success 204 "No content"
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Quiz not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{courseID}/quizzes/{quizID} [delete]
func (h *QuizHandler) DeleteQuiz(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireActor(w, r)
	if !ok {
		return
	}
	courseID, ok := h.pathID(w, r, "courseID", "course")
	if !ok {
		return
	}
	quizID, ok := h.pathID(w, r, "quizID", "quiz")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), actor, courseID, quizID); err != nil {
		h.RespondServiceError(w, err, "delete quiz")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
