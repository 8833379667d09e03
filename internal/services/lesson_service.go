package services

import (
	"context"
	"fmt"

	"github.com/courseplatform/backend/internal/models"
)

// LessonRepository defines methods for lesson data access
type LessonRepository interface {
	// GetByID retrieves a lesson by ID
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the lesson.
	//
	// Returns the lesson, or an error wrapping models.ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id int) (*models.Lesson, error)
	// GetByCourse retrieves the lessons of a course in order
	//
	// "ctx" is the context for the request.
	// "courseID" is the ID of the course.
	// "previewOnly" restricts the list to preview lessons.
	//
	// Returns a list of lessons and an error if any.
	GetByCourse(ctx context.Context, courseID int, previewOnly bool) ([]models.Lesson, error)
	// Create creates a lesson at the end of its course and sets its ID and order index
	//
	// "ctx" is the context for the request.
	// "lesson" is the lesson to create.
	//
	// Returns an error if any.
	Create(ctx context.Context, lesson *models.Lesson) error
	// Update applies a partial update to a lesson
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the lesson.
	// "req" holds the fields to change.
	//
	// Returns an error if any.
	Update(ctx context.Context, id int, req *models.UpdateLessonRequest) error
	// Reorder assigns order indexes following the given lesson IDs
	//
	// "ctx" is the context for the request.
	// "courseID" is the ID of the course.
	// "lessonIDs" are all lesson IDs of the course in their new order.
	//
	// Returns an error if any.
	Reorder(ctx context.Context, courseID int, lessonIDs []int) error
	// Delete deletes a lesson
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the lesson.
	//
	// Returns an error if any.
	Delete(ctx context.Context, id int) error
}

type lessonService struct {
	courseRepo     CourseRepository
	lessonRepo     LessonRepository
	enrollmentRepo EnrollmentRepository
}

// NewLessonService creates a new lesson service
func NewLessonService(courseRepo CourseRepository, lessonRepo LessonRepository, enrollmentRepo EnrollmentRepository) *lessonService {
	return &lessonService{
		courseRepo:     courseRepo,
		lessonRepo:     lessonRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

// hasFullAccess reports whether the actor may see every lesson of the course
func (s *lessonService) hasFullAccess(ctx context.Context, actor models.Actor, course *models.Course) (bool, error) {
	if actor.CanManage(course.InstructorID) {
		return true, nil
	}
	if actor.IsAnonymous() {
		return false, nil
	}
	return s.enrollmentRepo.Exists(ctx, actor.UserID, course.ID)
}

func (s *lessonService) visibleCourse(ctx context.Context, actor models.Actor, courseID int) (*models.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsPublished && !actor.CanManage(course.InstructorID) {
		return nil, fmt.Errorf("course %d: %w", courseID, models.ErrNotFound)
	}
	return course, nil
}

// List retrieves the lessons of a course.
// Enrolled users, the course owner and admins see every lesson; everyone else sees preview lessons only.
func (s *lessonService) List(ctx context.Context, actor models.Actor, courseID int) ([]models.Lesson, error) {
	course, err := s.visibleCourse(ctx, actor, courseID)
	if err != nil {
		return nil, err
	}
	full, err := s.hasFullAccess(ctx, actor, course)
	if err != nil {
		return nil, err
	}
	return s.lessonRepo.GetByCourse(ctx, courseID, !full)
}

// Get retrieves one lesson of a course; non-preview lessons require full access
func (s *lessonService) Get(ctx context.Context, actor models.Actor, courseID, lessonID int) (*models.Lesson, error) {
	course, err := s.visibleCourse(ctx, actor, courseID)
	if err != nil {
		return nil, err
	}
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson.CourseID != courseID {
		return nil, fmt.Errorf("lesson %d in course %d: %w", lessonID, courseID, models.ErrNotFound)
	}
	if lesson.IsPreview {
		return lesson, nil
	}

	full, err := s.hasFullAccess(ctx, actor, course)
	if err != nil {
		return nil, err
	}
	if !full {
		return nil, fmt.Errorf("%w: enrollment required for lesson %d", models.ErrPermissionDenied, lessonID)
	}
	return lesson, nil
}

// Create adds a lesson at the end of a course
func (s *lessonService) Create(ctx context.Context, actor models.Actor, courseID int, req *models.CreateLessonRequest) (*models.Lesson, error) {
	if _, err := managedCourse(ctx, s.courseRepo, actor, courseID); err != nil {
		return nil, err
	}

	lesson := &models.Lesson{
		CourseID:        courseID,
		Title:           req.Title,
		Content:         req.Content,
		VideoURL:        req.VideoURL,
		DurationSeconds: req.DurationSeconds,
		IsPreview:       req.IsPreview,
	}
	if err := s.lessonRepo.Create(ctx, lesson); err != nil {
		return nil, err
	}

	return s.lessonRepo.GetByID(ctx, lesson.ID)
}

// Update applies a partial update to a lesson
func (s *lessonService) Update(ctx context.Context, actor models.Actor, lessonID int, req *models.UpdateLessonRequest) (*models.Lesson, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if _, err := managedCourse(ctx, s.courseRepo, actor, lesson.CourseID); err != nil {
		return nil, err
	}
	if req.IsEmpty() {
		return nil, fmt.Errorf("%w: no fields to update", models.ErrValidation)
	}
	if err := s.lessonRepo.Update(ctx, lessonID, req); err != nil {
		return nil, err
	}
	return s.lessonRepo.GetByID(ctx, lessonID)
}

// Reorder sets the lesson order of a course.
// The IDs must list every lesson of the course exactly once.
func (s *lessonService) Reorder(ctx context.Context, actor models.Actor, courseID int, lessonIDs []int) ([]models.Lesson, error) {
	if _, err := managedCourse(ctx, s.courseRepo, actor, courseID); err != nil {
		return nil, err
	}

	lessons, err := s.lessonRepo.GetByCourse(ctx, courseID, false)
	if err != nil {
		return nil, err
	}
	if len(lessonIDs) != len(lessons) {
		return nil, fmt.Errorf("%w: expected %d lesson ids, got %d", models.ErrValidation, len(lessons), len(lessonIDs))
	}
	members := make(map[int]bool, len(lessons))
	for _, l := range lessons {
		members[l.ID] = false
	}
	for _, id := range lessonIDs {
		seen, ok := members[id]
		if !ok {
			return nil, fmt.Errorf("%w: lesson %d does not belong to course %d", models.ErrValidation, id, courseID)
		}
		if seen {
			return nil, fmt.Errorf("%w: lesson %d listed more than once", models.ErrValidation, id)
		}
		members[id] = true
	}

	if err := s.lessonRepo.Reorder(ctx, courseID, lessonIDs); err != nil {
		return nil, err
	}
	return s.lessonRepo.GetByCourse(ctx, courseID, false)
}

// Delete deletes a lesson
func (s *lessonService) Delete(ctx context.Context, actor models.Actor, lessonID int) error {
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return err
	}
	if _, err := managedCourse(ctx, s.courseRepo, actor, lesson.CourseID); err != nil {
		return err
	}
	return s.lessonRepo.Delete(ctx, lessonID)
}
