package services

import (
	"context"
	"fmt"

	"github.com/courseplatform/backend/internal/models"
	"github.com/courseplatform/backend/internal/scoring"
)

// ProgressRepository defines methods for progress data access
type ProgressRepository interface {
	// CourseExists checks if a course exists
	//
	// "ctx" is the context for the request.
	// "courseID" is the ID of the course.
	//
	// Returns a boolean and an error if any.
	CourseExists(ctx context.Context, courseID int) (bool, error)
	// CountContent counts the lessons and quizzes of a course and the distinct lessons the user completed
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "courseID" is the ID of the course.
	//
	// Returns the counts with the quiz pass count and percentage left empty, and an error if any.
	CountContent(ctx context.Context, userID, courseID int) (*models.CourseProgress, error)
	// GetAttemptScores groups the user's attempts on the course's quizzes by quiz, score and total
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "courseID" is the ID of the course.
	//
	// Returns the grouped scores and an error if any.
	GetAttemptScores(ctx context.Context, userID, courseID int) ([]models.AttemptScore, error)
}

type progressService struct {
	progressRepo   ProgressRepository
	enrollmentRepo EnrollmentRepository
}

// NewProgressService creates a new progress service
func NewProgressService(progressRepo ProgressRepository, enrollmentRepo EnrollmentRepository) *progressService {
	return &progressService{
		progressRepo:   progressRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

// Progress computes a user's progress through a course.
//
// Passed quizzes are distinct quizzes with at least one passing attempt.
// The percentage is (completed lessons + passed quizzes) / (lessons + quizzes), 0 when the course is empty.
func (s *progressService) Progress(ctx context.Context, userID, courseID int) (*models.CourseProgress, error) {
	exists, err := s.progressRepo.CourseExists(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("course %d: %w", courseID, models.ErrNotFound)
	}
	return s.progress(ctx, userID, courseID)
}

func (s *progressService) progress(ctx context.Context, userID, courseID int) (*models.CourseProgress, error) {
	progress, err := s.progressRepo.CountContent(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	scores, err := s.progressRepo.GetAttemptScores(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	passed := make(map[int]struct{})
	for _, sc := range scores {
		if scoring.IsPass(sc.Score, sc.Total) {
			passed[sc.QuizID] = struct{}{}
		}
	}
	progress.PassedQuizzes = len(passed)

	done := progress.CompletedLessons + progress.PassedQuizzes
	all := progress.TotalLessons + progress.TotalQuizzes
	progress.PercentComplete = scoring.Percent(float64(done), float64(all))
	return progress, nil
}

// MyEnrollments retrieves every enrollment of a user with its course and progress
func (s *progressService) MyEnrollments(ctx context.Context, userID int) ([]models.EnrollmentWithProgress, error) {
	items, err := s.enrollmentRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		progress, err := s.progress(ctx, userID, items[i].Course.ID)
		if err != nil {
			return nil, err
		}
		items[i].Progress = *progress
	}
	return items, nil
}
