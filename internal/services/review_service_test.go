package services

import (
	"context"
	"testing"

	"github.com/courseplatform/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupReviewService(reviews ...models.Review) (*reviewService, *mockReviewRepository) {
	repo := newMockReviewRepository(reviews...)
	svc := NewReviewService(
		newMockCourseRepository(sampleCourses()...),
		newMockEnrollmentRepository([2]int{42, 3}),
		repo,
	)
	return svc, repo
}

func TestReviewService_Create(t *testing.T) {
	tests := []struct {
		name        string
		actor       models.Actor
		courseID    int
		rating      int
		existing    []models.Review
		expectedErr error
	}{
		{name: "enrolled student", actor: student, courseID: 3, rating: 4},
		{name: "rating too low", actor: student, courseID: 3, rating: 0, expectedErr: models.ErrValidation},
		{name: "rating too high", actor: student, courseID: 3, rating: 6, expectedErr: models.ErrValidation},
		{name: "not enrolled", actor: instructor, courseID: 3, rating: 4, expectedErr: models.ErrPermissionDenied},
		{name: "missing course", actor: student, courseID: 99, rating: 4, expectedErr: models.ErrNotFound},
		{
			name:        "second review",
			actor:       student,
			courseID:    3,
			rating:      4,
			existing:    []models.Review{{ID: 1, UserID: 42, CourseID: 3, Rating: 5}},
			expectedErr: models.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := setupReviewService(tt.existing...)

			review, err := svc.Create(context.Background(), tt.actor, tt.courseID, &models.CreateReviewRequest{Rating: tt.rating, Comment: "ok"})

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, review)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.rating, review.Rating)
			assert.Equal(t, 42, review.UserID)
		})
	}
}

func TestReviewService_Update(t *testing.T) {
	tests := []struct {
		name        string
		actor       models.Actor
		rating      int
		expectedErr error
	}{
		{name: "author", actor: student, rating: 2},
		{name: "admin", actor: admin, rating: 3},
		{name: "other user", actor: instructor, rating: 3, expectedErr: models.ErrPermissionDenied},
		{name: "invalid rating", actor: student, rating: 9, expectedErr: models.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := setupReviewService(models.Review{ID: 1, UserID: 42, CourseID: 3, Rating: 5})

			review, err := svc.Update(context.Background(), tt.actor, 1, &models.UpdateReviewRequest{Rating: intPtr(tt.rating)})

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, repo.updated)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.rating, review.Rating)
		})
	}
}

func TestReviewService_Delete(t *testing.T) {
	svc, repo := setupReviewService(models.Review{ID: 1, UserID: 42, CourseID: 3, Rating: 5})

	assert.ErrorIs(t, svc.Delete(context.Background(), instructor, 1), models.ErrPermissionDenied)
	require.NoError(t, svc.Delete(context.Background(), student, 1))
	assert.Equal(t, 1, repo.deleted)
	assert.ErrorIs(t, svc.Delete(context.Background(), student, 1), models.ErrNotFound)
}

func TestReviewService_List(t *testing.T) {
	svc, _ := setupReviewService(
		models.Review{ID: 1, UserID: 42, CourseID: 3, Rating: 5},
		models.Review{ID: 2, UserID: 43, CourseID: 3, Rating: 3},
		models.Review{ID: 3, UserID: 43, CourseID: 4, Rating: 1},
	)

	reviews, err := svc.List(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)

	_, err = svc.List(context.Background(), 99)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
