package services

import (
	"context"
	"fmt"
	"time"

	"github.com/courseplatform/backend/internal/models"
)

// EnrollmentRepository defines methods for enrollment data access
type EnrollmentRepository interface {
	// Exists checks if a user is enrolled in a course
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "courseID" is the ID of the course.
	//
	// Returns a boolean and an error if any.
	Exists(ctx context.Context, userID, courseID int) (bool, error)
	// Create creates a new enrollment and sets its ID
	//
	// "ctx" is the context for the request.
	// "enrollment" is the enrollment to create.
	//
	// Returns an error wrapping models.ErrConflict if the user is already enrolled.
	Create(ctx context.Context, enrollment *models.Enrollment) error
	// GetByUser retrieves the enrollments of a user with their courses
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	//
	// Returns a list of enrollments with the progress left empty and an error if any.
	GetByUser(ctx context.Context, userID int) ([]models.EnrollmentWithProgress, error)
}

// LessonCompletionRepository defines methods for lesson completion data access
type LessonCompletionRepository interface {
	// Complete records a lesson completion and moves the enrollment's last lesson pointer
	//
	// "ctx" is the context for the request.
	// "userID" is the ID of the user.
	// "courseID" is the ID of the course holding the lesson.
	// "lessonID" is the ID of the lesson.
	// "completedAt" is the completion time.
	//
	// Returns whether a new completion was recorded and an error if any.
	Complete(ctx context.Context, userID, courseID, lessonID int, completedAt time.Time) (bool, error)
}

type enrollmentService struct {
	courseRepo     CourseRepository
	lessonRepo     LessonRepository
	enrollmentRepo EnrollmentRepository
	completionRepo LessonCompletionRepository
	now            func() time.Time
}

// NewEnrollmentService creates a new enrollment service
func NewEnrollmentService(
	courseRepo CourseRepository,
	lessonRepo LessonRepository,
	enrollmentRepo EnrollmentRepository,
	completionRepo LessonCompletionRepository,
) *enrollmentService {
	return &enrollmentService{
		courseRepo:     courseRepo,
		lessonRepo:     lessonRepo,
		enrollmentRepo: enrollmentRepo,
		completionRepo: completionRepo,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Enroll enrolls a user in a published course
func (s *enrollmentService) Enroll(ctx context.Context, userID, courseID int) (*models.Enrollment, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsPublished {
		return nil, fmt.Errorf("%w: course %d is not published", models.ErrPermissionDenied, courseID)
	}

	enrollment := &models.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: s.now(),
	}
	if err := s.enrollmentRepo.Create(ctx, enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// CompleteLesson marks a lesson of a course as completed by an enrolled user.
// Completing the same lesson again succeeds without adding a second record.
func (s *enrollmentService) CompleteLesson(ctx context.Context, userID, courseID, lessonID int) (*models.LessonCompletion, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson.CourseID != courseID {
		return nil, fmt.Errorf("lesson %d in course %d: %w", lessonID, courseID, models.ErrNotFound)
	}

	enrolled, err := s.enrollmentRepo.Exists(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, fmt.Errorf("%w: user %d is not enrolled in course %d", models.ErrPermissionDenied, userID, courseID)
	}

	completion := &models.LessonCompletion{
		UserID:      userID,
		LessonID:    lessonID,
		CompletedAt: s.now(),
	}
	if _, err := s.completionRepo.Complete(ctx, userID, courseID, lessonID, completion.CompletedAt); err != nil {
		return nil, err
	}
	return completion, nil
}
