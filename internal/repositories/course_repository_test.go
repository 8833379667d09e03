package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/courseplatform/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var courseRowColumns = []string{"id", "instructor_id", "title", "subtitle", "description", "category", "language",
	"level", "price", "thumbnail_url", "is_published", "average_rating", "created_at", "updated_at"}

func strPtr(v string) *string { return &v }

func TestCourseRepository_GetByID(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError error
		expectPrice   bool
	}{
		{
			name: "success with price",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM courses c WHERE c.id = \? LIMIT 1`).
					WithArgs(1).
					WillReturnRows(sqlmock.NewRows(courseRowColumns).
						AddRow(1, 2, "Go", "", "", "dev", "en", "beginner", 19.5, "", true, 4.5, now, now))
			},
			expectPrice: true,
		},
		{
			name: "success free course",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM courses c WHERE c.id = \? LIMIT 1`).
					WithArgs(1).
					WillReturnRows(sqlmock.NewRows(courseRowColumns).
						AddRow(1, 2, "Go", "", "", "dev", "en", "beginner", nil, "", false, 0, now, now))
			},
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM courses c WHERE c.id = \?`).
					WithArgs(1).
					WillReturnRows(sqlmock.NewRows(courseRowColumns))
			},
			expectedError: models.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, cleanup := setupTestDB(t)
			defer cleanup()
			repo := NewCourseRepository(db)
			tt.setupMock(mock)

			course, err := repo.GetByID(context.Background(), 1)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, course)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "Go", course.Title)
				assert.Equal(t, tt.expectPrice, course.Price != nil)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCourseRepository_GetAll(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	now := time.Now()
	mock.ExpectQuery(`FROM courses c WHERE c.is_published = TRUE AND c.instructor_id = \? AND c.title LIKE \? ORDER BY c.id LIMIT \? OFFSET \?`).
		WithArgs(2, "%go%", 10, 10).
		WillReturnRows(sqlmock.NewRows(courseRowColumns).
			AddRow(1, 2, "Go", "", "", "dev", "en", "beginner", nil, "", true, 0, now, now))

	courses, err := repo.GetAll(context.Background(), models.CourseFilter{
		PublishedOnly: true,
		InstructorID:  2,
		Search:        "go",
		Page:          2,
		Count:         10,
	})

	require.NoError(t, err)
	assert.Len(t, courses, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepository_Create(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec(`INSERT INTO courses \(instructor_id, title, subtitle, description, category, language, level, price, thumbnail_url, is_published\)`).
		WithArgs(2, "Go", "", "", "", "", models.CourseLevelBeginner, nil, "", false).
		WillReturnResult(sqlmock.NewResult(7, 1))

	course := &models.Course{InstructorID: 2, Title: "Go", Level: models.CourseLevelBeginner}
	require.NoError(t, repo.Create(context.Background(), course))
	assert.Equal(t, 7, course.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepository_Update(t *testing.T) {
	published := true
	tests := []struct {
		name          string
		req           *models.UpdateCourseRequest
		setupMock     func(sqlmock.Sqlmock)
		expectedError error
	}{
		{
			name: "success",
			req:  &models.UpdateCourseRequest{Title: strPtr("Go 2"), IsPublished: &published},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE courses SET title = \?, is_published = \? WHERE id = \?`).
					WithArgs("Go 2", true, 1).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name:          "no fields",
			req:           &models.UpdateCourseRequest{},
			setupMock:     func(mock sqlmock.Sqlmock) {},
			expectedError: models.ErrValidation,
		},
		{
			name: "not found",
			req:  &models.UpdateCourseRequest{Title: strPtr("Go 2")},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE courses SET title = \? WHERE id = \?`).
					WithArgs("Go 2", 1).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			expectedError: models.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, cleanup := setupTestDB(t)
			defer cleanup()
			repo := NewCourseRepository(db)
			tt.setupMock(mock)

			err := repo.Update(context.Background(), 1, tt.req)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCourseRepository_Delete(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec(`DELETE FROM courses WHERE id = \?`).
		WithArgs(1).
		WillReturnError(errors.New("database error"))

	assert.Error(t, repo.Delete(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}
