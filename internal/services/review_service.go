package services

import (
	"context"
	"fmt"

	"github.com/courseplatform/backend/internal/models"
)

// ReviewRepository defines methods for review data access
type ReviewRepository interface {
	// GetByCourse retrieves the reviews of a course, newest first
	//
	// "ctx" is the context for the request.
	// "courseID" is the ID of the course.
	//
	// Returns a list of reviews and an error if any.
	GetByCourse(ctx context.Context, courseID int) ([]models.Review, error)
	// GetByID retrieves a review by ID
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the review.
	//
	// Returns the review, or an error wrapping models.ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id int) (*models.Review, error)
	// Create creates a review and refreshes the course's average rating
	//
	// "ctx" is the context for the request.
	// "review" is the review to create; its ID is set on success.
	//
	// Returns an error wrapping models.ErrConflict if the user already reviewed the course.
	Create(ctx context.Context, review *models.Review) error
	// Update applies a partial update to a review and refreshes the course's average rating
	//
	// "ctx" is the context for the request.
	// "review" is the stored review.
	// "req" holds the fields to change.
	//
	// Returns an error if any.
	Update(ctx context.Context, review *models.Review, req *models.UpdateReviewRequest) error
	// Delete deletes a review and refreshes the course's average rating
	//
	// "ctx" is the context for the request.
	// "review" is the stored review.
	//
	// Returns an error if any.
	Delete(ctx context.Context, review *models.Review) error
}

type reviewService struct {
	courseRepo     CourseRepository
	enrollmentRepo EnrollmentRepository
	reviewRepo     ReviewRepository
}

// NewReviewService creates a new review service
func NewReviewService(courseRepo CourseRepository, enrollmentRepo EnrollmentRepository, reviewRepo ReviewRepository) *reviewService {
	return &reviewService{
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		reviewRepo:     reviewRepo,
	}
}

func validRating(rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", models.ErrValidation)
	}
	return nil
}

// List retrieves the reviews of a course
func (s *reviewService) List(ctx context.Context, courseID int) ([]models.Review, error) {
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return nil, err
	}
	return s.reviewRepo.GetByCourse(ctx, courseID)
}

// Create adds the actor's review of a course they are enrolled in
func (s *reviewService) Create(ctx context.Context, actor models.Actor, courseID int, req *models.CreateReviewRequest) (*models.Review, error) {
	if err := validRating(req.Rating); err != nil {
		return nil, err
	}
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return nil, err
	}

	enrolled, err := s.enrollmentRepo.Exists(ctx, actor.UserID, courseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, fmt.Errorf("%w: only enrolled users can review course %d", models.ErrPermissionDenied, courseID)
	}

	review := &models.Review{
		UserID:   actor.UserID,
		CourseID: courseID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}
	return s.reviewRepo.GetByID(ctx, review.ID)
}

// Update changes a review written by the actor; admins may change any review
func (s *reviewService) Update(ctx context.Context, actor models.Actor, reviewID int, req *models.UpdateReviewRequest) (*models.Review, error) {
	review, err := s.ownedReview(ctx, actor, reviewID)
	if err != nil {
		return nil, err
	}
	if req.Rating != nil {
		if err := validRating(*req.Rating); err != nil {
			return nil, err
		}
	}
	if err := s.reviewRepo.Update(ctx, review, req); err != nil {
		return nil, err
	}
	return s.reviewRepo.GetByID(ctx, reviewID)
}

// Delete deletes a review written by the actor; admins may delete any review
func (s *reviewService) Delete(ctx context.Context, actor models.Actor, reviewID int) error {
	review, err := s.ownedReview(ctx, actor, reviewID)
	if err != nil {
		return err
	}
	return s.reviewRepo.Delete(ctx, review)
}

func (s *reviewService) ownedReview(ctx context.Context, actor models.Actor, reviewID int) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: review %d belongs to another user", models.ErrPermissionDenied, reviewID)
	}
	return review, nil
}
