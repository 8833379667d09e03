package services

import (
	"context"
	"fmt"

	"github.com/courseplatform/backend/internal/models"
)

type certificateService struct {
	progressRepo   ProgressRepository
	enrollmentRepo EnrollmentRepository
}

// NewCertificateService creates a new certificate eligibility service
func NewCertificateService(progressRepo ProgressRepository, enrollmentRepo EnrollmentRepository) *certificateService {
	return &certificateService{
		progressRepo:   progressRepo,
		enrollmentRepo: enrollmentRepo,
	}
}

// Eligibility reports whether an enrolled user completed every lesson of a course.
// A course without lessons never grants a certificate.
func (s *certificateService) Eligibility(ctx context.Context, userID, courseID int) (*models.CertificateEligibility, error) {
	exists, err := s.progressRepo.CourseExists(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("course %d: %w", courseID, models.ErrNotFound)
	}

	enrolled, err := s.enrollmentRepo.Exists(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, fmt.Errorf("%w: user %d is not enrolled in course %d", models.ErrPermissionDenied, userID, courseID)
	}

	counts, err := s.progressRepo.CountContent(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	return &models.CertificateEligibility{
		CourseID:         courseID,
		UserID:           userID,
		TotalLessons:     counts.TotalLessons,
		CompletedLessons: counts.CompletedLessons,
		Eligible:         counts.TotalLessons > 0 && counts.CompletedLessons >= counts.TotalLessons,
	}, nil
}
