package services

import (
	"context"
	"fmt"

	"github.com/courseplatform/backend/internal/models"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CourseRepository defines methods for course data access
type CourseRepository interface {
	// GetByID retrieves a course by ID
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the course.
	//
	// Returns the course, or an error wrapping models.ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id int) (*models.Course, error)
	// GetAll retrieves a list of courses with filtering and pagination
	//
	// "ctx" is the context for the request.
	// "filter" holds the filters and the page to retrieve.
	//
	// Returns a list of courses and an error if any.
	GetAll(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	// Create creates a new course and sets its ID
	//
	// "ctx" is the context for the request.
	// "course" is the course to create.
	//
	// Returns an error if any.
	Create(ctx context.Context, course *models.Course) error
	// Update applies a partial update to a course
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the course.
	// "req" holds the fields to change.
	//
	// Returns an error if any.
	Update(ctx context.Context, id int, req *models.UpdateCourseRequest) error
	// Delete deletes a course with everything it owns
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the course.
	//
	// Returns an error if any.
	Delete(ctx context.Context, id int) error
}

type courseService struct {
	courseRepo CourseRepository
	quizRepo   QuizRepository
	keys       AnswerKeyInvalidator
	logger     *zap.Logger
}

// NewCourseService creates a new course service
func NewCourseService(courseRepo CourseRepository, quizRepo QuizRepository, keys AnswerKeyInvalidator, logger *zap.Logger) *courseService {
	return &courseService{
		courseRepo: courseRepo,
		quizRepo:   quizRepo,
		keys:       keys,
		logger:     logger,
	}
}

func normalizePage(filter *models.CourseFilter) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Count < 1 {
		filter.Count = defaultPageSize
	}
	if filter.Count > maxPageSize {
		filter.Count = maxPageSize
	}
}

// ListPublished retrieves the published course catalog
func (s *courseService) ListPublished(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	normalizePage(&filter)
	filter.PublishedOnly = true
	filter.InstructorID = 0
	return s.courseRepo.GetAll(ctx, filter)
}

// ListManaged retrieves the courses the actor may manage: their own for instructors, all for admins
func (s *courseService) ListManaged(ctx context.Context, actor models.Actor, filter models.CourseFilter) ([]models.Course, error) {
	if actor.Role < models.RoleInstructor {
		return nil, fmt.Errorf("%w: instructor role required", models.ErrPermissionDenied)
	}
	normalizePage(&filter)
	filter.PublishedOnly = false
	filter.InstructorID = 0
	if !actor.IsAdmin() {
		filter.InstructorID = actor.UserID
	}
	return s.courseRepo.GetAll(ctx, filter)
}

// Get retrieves a course; unpublished courses are only visible to those who can manage them
func (s *courseService) Get(ctx context.Context, actor models.Actor, id int) (*models.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !course.IsPublished && !actor.CanManage(course.InstructorID) {
		return nil, fmt.Errorf("course %d: %w", id, models.ErrNotFound)
	}
	return course, nil
}

// Create creates a course owned by the actor
func (s *courseService) Create(ctx context.Context, actor models.Actor, req *models.CreateCourseRequest) (*models.Course, error) {
	if actor.Role < models.RoleInstructor {
		return nil, fmt.Errorf("%w: instructor role required", models.ErrPermissionDenied)
	}

	level := req.Level
	if level == "" {
		level = models.CourseLevelBeginner
	}
	course := &models.Course{
		InstructorID: actor.UserID,
		Title:        req.Title,
		Subtitle:     req.Subtitle,
		Description:  req.Description,
		Category:     req.Category,
		Language:     req.Language,
		Level:        level,
		Price:        req.Price,
		ThumbnailURL: req.ThumbnailURL,
		IsPublished:  req.IsPublished,
	}
	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}

	return s.courseRepo.GetByID(ctx, course.ID)
}

// Update applies a partial update to a course owned by the actor
func (s *courseService) Update(ctx context.Context, actor models.Actor, id int, req *models.UpdateCourseRequest) (*models.Course, error) {
	if _, err := managedCourse(ctx, s.courseRepo, actor, id); err != nil {
		return nil, err
	}
	if req.IsEmpty() {
		return nil, fmt.Errorf("%w: no fields to update", models.ErrValidation)
	}
	if err := s.courseRepo.Update(ctx, id, req); err != nil {
		return nil, err
	}
	return s.courseRepo.GetByID(ctx, id)
}

// Delete deletes a course owned by the actor and drops the cached answer keys of its quizzes
func (s *courseService) Delete(ctx context.Context, actor models.Actor, id int) error {
	if _, err := managedCourse(ctx, s.courseRepo, actor, id); err != nil {
		return err
	}

	// Quizzes go with the course, so collect them first.
	quizzes, err := s.quizRepo.GetByCourse(ctx, id)
	if err != nil {
		return err
	}
	if err := s.courseRepo.Delete(ctx, id); err != nil {
		return err
	}
	for _, quiz := range quizzes {
		invalidateAnswerKey(ctx, s.keys, s.logger, quiz.ID)
	}
	return nil
}

// managedCourse loads a course and checks the actor may author it
func managedCourse(ctx context.Context, repo CourseRepository, actor models.Actor, id int) (*models.Course, error) {
	course, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(course.InstructorID) {
		return nil, fmt.Errorf("%w: course %d is not managed by user %d", models.ErrPermissionDenied, id, actor.UserID)
	}
	return course, nil
}
