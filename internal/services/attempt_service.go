package services

import (
	"context"
	"fmt"
	"time"

	"github.com/courseplatform/backend/internal/models"
	"github.com/courseplatform/backend/internal/scoring"
	"go.uber.org/zap"
)

// AnswerKeyLoader loads the grading snapshot of a quiz
type AnswerKeyLoader interface {
	// LoadAnswerKey loads the answer key of a quiz
	//
	// "ctx" is the context for the request.
	// "quizID" is the ID of the quiz.
	//
	// Returns the answer key, or an error wrapping models.ErrNotFound if the quiz does not exist.
	LoadAnswerKey(ctx context.Context, quizID int) (*scoring.AnswerKey, error)
}

// AttemptRepository defines methods for attempt ledger data access
type AttemptRepository interface {
	// Submit records a scored attempt and its answers atomically
	//
	// "ctx" is the context for the request.
	// "attempt" is the attempt to record; its ID is set on success.
	//
	// Returns an error wrapping models.ErrConflict when retries are disabled and the user already has an attempt.
	Submit(ctx context.Context, attempt *models.QuizAttempt) error
	// GetByQuiz retrieves the attempts of a quiz with their answers
	//
	// "ctx" is the context for the request.
	// "quizID" is the ID of the quiz.
	// "userID" restricts the result to one user when non-zero.
	//
	// Returns a list of attempts and an error if any.
	GetByQuiz(ctx context.Context, quizID, userID int) ([]models.QuizAttempt, error)
}

type attemptService struct {
	keys           AnswerKeyLoader
	enrollmentRepo EnrollmentRepository
	attemptRepo    AttemptRepository
	quizRepo       QuizRepository
	courseRepo     CourseRepository
	logger         *zap.Logger
	now            func() time.Time
}

// NewAttemptService creates a new attempt service
func NewAttemptService(
	keys AnswerKeyLoader,
	enrollmentRepo EnrollmentRepository,
	attemptRepo AttemptRepository,
	quizRepo QuizRepository,
	courseRepo CourseRepository,
	logger *zap.Logger,
) *attemptService {
	return &attemptService{
		keys:           keys,
		enrollmentRepo: enrollmentRepo,
		attemptRepo:    attemptRepo,
		quizRepo:       quizRepo,
		courseRepo:     courseRepo,
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Submit scores a submission and records it as a new attempt.
//
// "revealCorrect" keeps the correct option IDs on the returned answers.
//
// Returns an error wrapping models.ErrNotFound when the quiz does not exist,
// models.ErrPermissionDenied when the user is not enrolled in the quiz's course,
// models.ErrValidation when the submission references foreign questions or options,
// or models.ErrConflict when retries are disabled and the user already submitted.
func (s *attemptService) Submit(ctx context.Context, quizID, userID int, req *models.SubmitQuizRequest, revealCorrect bool) (*models.QuizAttempt, error) {
	key, err := s.keys.LoadAnswerKey(ctx, quizID)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.enrollmentRepo.Exists(ctx, userID, key.CourseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		// A cached key can outlive its quiz; a deleted quiz reports NotFound.
		if _, err := s.quizRepo.GetByID(ctx, quizID); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: user %d is not enrolled in course %d", models.ErrPermissionDenied, userID, key.CourseID)
	}

	result, err := scoring.Score(key, req.Answers)
	if err != nil {
		return nil, err
	}

	attempt := &models.QuizAttempt{
		QuizID:    quizID,
		UserID:    userID,
		Score:     result.Score,
		Total:     result.Total,
		Passed:    result.Passed(),
		StartedAt: req.StartedAt,
		CreatedAt: s.now(),
		Answers:   result.Answers,
	}
	if err := s.attemptRepo.Submit(ctx, attempt); err != nil {
		return nil, err
	}

	s.logger.Info("quiz attempt recorded",
		zap.Int("attempt_id", attempt.ID),
		zap.Int("quiz_id", quizID),
		zap.Int("user_id", userID),
		zap.Int("score", attempt.Score),
		zap.Int("total", attempt.Total),
	)

	if !revealCorrect {
		for i := range attempt.Answers {
			attempt.Answers[i].CorrectOptionID = nil
		}
	}
	return attempt, nil
}

// ListByQuiz retrieves every attempt of a quiz for the course owner or an admin
func (s *attemptService) ListByQuiz(ctx context.Context, actor models.Actor, quizID int) ([]models.QuizAttempt, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if _, err := managedCourse(ctx, s.courseRepo, actor, quiz.CourseID); err != nil {
		return nil, err
	}
	return s.attemptRepo.GetByQuiz(ctx, quizID, 0)
}

// ListMine retrieves a user's own attempts of a quiz
func (s *attemptService) ListMine(ctx context.Context, quizID, userID int) ([]models.QuizAttempt, error) {
	if _, err := s.quizRepo.GetByID(ctx, quizID); err != nil {
		return nil, err
	}
	return s.attemptRepo.GetByQuiz(ctx, quizID, userID)
}
