package services

import (
	"context"
	"fmt"

	"github.com/courseplatform/backend/internal/models"
	"go.uber.org/zap"
)

// QuizRepository defines methods for quiz catalog data access
type QuizRepository interface {
	// GetByID retrieves a quiz without its questions
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the quiz.
	//
	// Returns the quiz, or an error wrapping models.ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id int) (*models.Quiz, error)
	// GetWithQuestions retrieves a quiz with its questions and options in display order
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the quiz.
	//
	// Returns the quiz and an error if any.
	GetWithQuestions(ctx context.Context, id int) (*models.Quiz, error)
	// GetByCourse retrieves the quizzes of a course
	//
	// "ctx" is the context for the request.
	// "courseID" is the ID of the course.
	//
	// Returns a list of quizzes and an error if any.
	GetByCourse(ctx context.Context, courseID int) ([]models.QuizListItem, error)
	// Create creates a quiz with its questions and options
	//
	// "ctx" is the context for the request.
	// "quiz" is the quiz to create; its ID and questions are set on success.
	// "questions" are the questions to create with it.
	//
	// Returns an error if any.
	Create(ctx context.Context, quiz *models.Quiz, questions []models.CreateQuestionRequest) error
	// AddQuestion appends a question with its options to a quiz
	//
	// "ctx" is the context for the request.
	// "quizID" is the ID of the quiz.
	// "req" is the question to add.
	//
	// Returns the created question and an error if any.
	AddQuestion(ctx context.Context, quizID int, req *models.CreateQuestionRequest) (*models.Question, error)
	// Delete deletes a quiz of a course
	//
	// "ctx" is the context for the request.
	// "quizID" is the ID of the quiz.
	// "courseID" is the ID of the course the quiz must belong to.
	//
	// Returns an error if any.
	Delete(ctx context.Context, quizID, courseID int) error
}

// AnswerKeyInvalidator drops cached answer keys after catalog writes
type AnswerKeyInvalidator interface {
	Invalidate(ctx context.Context, quizID int) error
}

type quizService struct {
	courseRepo CourseRepository
	quizRepo   QuizRepository
	keys       AnswerKeyInvalidator
	logger     *zap.Logger
}

// NewQuizService creates a new quiz catalog service
func NewQuizService(courseRepo CourseRepository, quizRepo QuizRepository, keys AnswerKeyInvalidator, logger *zap.Logger) *quizService {
	return &quizService{
		courseRepo: courseRepo,
		quizRepo:   quizRepo,
		keys:       keys,
		logger:     logger,
	}
}

// Create creates a quiz in a course managed by the actor
func (s *quizService) Create(ctx context.Context, actor models.Actor, courseID int, req *models.CreateQuizRequest) (*models.Quiz, error) {
	if _, err := managedCourse(ctx, s.courseRepo, actor, courseID); err != nil {
		return nil, err
	}

	quiz := &models.Quiz{
		CourseID:   courseID,
		Title:      req.Title,
		AllowRetry: req.AllowRetry,
	}
	if err := s.quizRepo.Create(ctx, quiz, req.Questions); err != nil {
		return nil, err
	}

	s.logger.Info("quiz created",
		zap.Int("quiz_id", quiz.ID),
		zap.Int("course_id", courseID),
		zap.Int("questions", len(quiz.Questions)),
	)
	return quiz, nil
}

// AddQuestion appends a question to a quiz in a course managed by the actor
func (s *quizService) AddQuestion(ctx context.Context, actor models.Actor, quizID int, req *models.CreateQuestionRequest) (*models.Question, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if _, err := managedCourse(ctx, s.courseRepo, actor, quiz.CourseID); err != nil {
		return nil, err
	}

	question, err := s.quizRepo.AddQuestion(ctx, quizID, req)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, quizID)
	return question, nil
}

// List retrieves the quizzes of a course
func (s *quizService) List(ctx context.Context, actor models.Actor, courseID int) ([]models.QuizListItem, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsPublished && !actor.CanManage(course.InstructorID) {
		return nil, fmt.Errorf("course %d: %w", courseID, models.ErrNotFound)
	}
	return s.quizRepo.GetByCourse(ctx, courseID)
}

// Get retrieves a quiz with its questions; option correctness is only shown to those who manage the course
func (s *quizService) Get(ctx context.Context, actor models.Actor, quizID int) (*models.Quiz, error) {
	quiz, err := s.quizRepo.GetWithQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}
	course, err := s.courseRepo.GetByID(ctx, quiz.CourseID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(course.InstructorID) {
		if !course.IsPublished {
			return nil, fmt.Errorf("quiz %d: %w", quizID, models.ErrNotFound)
		}
		quiz.HideCorrectness()
	}
	return quiz, nil
}

// Delete deletes a quiz of a course managed by the actor
func (s *quizService) Delete(ctx context.Context, actor models.Actor, courseID, quizID int) error {
	if _, err := managedCourse(ctx, s.courseRepo, actor, courseID); err != nil {
		return err
	}
	if err := s.quizRepo.Delete(ctx, quizID, courseID); err != nil {
		return err
	}
	s.invalidate(ctx, quizID)
	return nil
}

func (s *quizService) invalidate(ctx context.Context, quizID int) {
	invalidateAnswerKey(ctx, s.keys, s.logger, quizID)
}

// invalidateAnswerKey drops a cached answer key; a failure is logged and the entry expires with its TTL
func invalidateAnswerKey(ctx context.Context, keys AnswerKeyInvalidator, logger *zap.Logger, quizID int) {
	if err := keys.Invalidate(ctx, quizID); err != nil {
		logger.Warn("failed to invalidate answer key", zap.Int("quiz_id", quizID), zap.Error(err))
	}
}
