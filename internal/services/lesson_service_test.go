package services

import (
	"context"
	"testing"

	"github.com/courseplatform/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLessons() []models.Lesson {
	return []models.Lesson{
		{ID: 10, CourseID: 3, Title: "Intro", OrderIndex: 1, IsPreview: true},
		{ID: 11, CourseID: 3, Title: "Types", OrderIndex: 2},
		{ID: 12, CourseID: 3, Title: "Funcs", OrderIndex: 3},
		{ID: 20, CourseID: 4, Title: "Draft lesson", OrderIndex: 1},
	}
}

func setupLessonService() (*lessonService, *mockLessonRepository) {
	lessons := &mockLessonRepository{lessons: sampleLessons()}
	svc := NewLessonService(
		newMockCourseRepository(sampleCourses()...),
		lessons,
		newMockEnrollmentRepository([2]int{42, 3}),
	)
	return svc, lessons
}

func TestLessonService_List(t *testing.T) {
	tests := []struct {
		name          string
		actor         models.Actor
		courseID      int
		expectedCount int
		expectedErr   error
	}{
		{name: "anonymous sees previews", actor: anonymous, courseID: 3, expectedCount: 1},
		{name: "enrolled student sees every lesson", actor: student, courseID: 3, expectedCount: 3},
		{name: "not enrolled student sees previews", actor: models.Actor{UserID: 43, Role: models.RoleStudent}, courseID: 3, expectedCount: 1},
		{name: "owner sees every lesson", actor: owner, courseID: 3, expectedCount: 3},
		{name: "draft course hidden", actor: student, courseID: 4, expectedErr: models.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := setupLessonService()

			lessons, err := svc.List(context.Background(), tt.actor, tt.courseID)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, lessons, tt.expectedCount)
		})
	}
}

func TestLessonService_Get(t *testing.T) {
	tests := []struct {
		name        string
		actor       models.Actor
		courseID    int
		lessonID    int
		expectedErr error
	}{
		{name: "preview lesson for anonymous", actor: anonymous, courseID: 3, lessonID: 10},
		{name: "full lesson for enrolled student", actor: student, courseID: 3, lessonID: 11},
		{name: "full lesson requires enrollment", actor: anonymous, courseID: 3, lessonID: 11, expectedErr: models.ErrPermissionDenied},
		{name: "lesson of another course", actor: admin, courseID: 3, lessonID: 20, expectedErr: models.ErrNotFound},
		{name: "missing lesson", actor: admin, courseID: 3, lessonID: 99, expectedErr: models.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := setupLessonService()

			lesson, err := svc.Get(context.Background(), tt.actor, tt.courseID, tt.lessonID)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, lesson)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.lessonID, lesson.ID)
		})
	}
}

func TestLessonService_Create(t *testing.T) {
	svc, repo := setupLessonService()

	lesson, err := svc.Create(context.Background(), owner, 3, &models.CreateLessonRequest{Title: "Generics", DurationSeconds: 300})

	require.NoError(t, err)
	assert.Equal(t, 3, lesson.CourseID)
	assert.Equal(t, 5, lesson.OrderIndex)
	assert.Len(t, repo.lessons, 5)

	_, err = svc.Create(context.Background(), student, 3, &models.CreateLessonRequest{Title: "Generics"})
	assert.ErrorIs(t, err, models.ErrPermissionDenied)
}

func TestLessonService_Update(t *testing.T) {
	svc, _ := setupLessonService()

	lesson, err := svc.Update(context.Background(), admin, 11, &models.UpdateLessonRequest{Title: strPtr("Type system")})
	require.NoError(t, err)
	assert.Equal(t, "Type system", lesson.Title)

	_, err = svc.Update(context.Background(), owner, 11, &models.UpdateLessonRequest{})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.Update(context.Background(), instructor, 11, &models.UpdateLessonRequest{Title: strPtr("x")})
	assert.ErrorIs(t, err, models.ErrPermissionDenied)
}

func TestLessonService_Reorder(t *testing.T) {
	tests := []struct {
		name        string
		actor       models.Actor
		ids         []int
		expectedErr error
	}{
		{name: "full permutation", actor: owner, ids: []int{12, 10, 11}},
		{name: "missing lesson", actor: owner, ids: []int{12, 10}, expectedErr: models.ErrValidation},
		{name: "duplicate lesson", actor: owner, ids: []int{12, 12, 10}, expectedErr: models.ErrValidation},
		{name: "foreign lesson", actor: owner, ids: []int{12, 10, 20}, expectedErr: models.ErrValidation},
		{name: "not the owner", actor: instructor, ids: []int{12, 10, 11}, expectedErr: models.ErrPermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := setupLessonService()

			lessons, err := svc.Reorder(context.Background(), tt.actor, 3, tt.ids)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, repo.reordered)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ids, repo.reordered)
			require.Len(t, lessons, 3)
			for _, l := range lessons {
				if l.ID == 12 {
					assert.Equal(t, 1, l.OrderIndex)
				}
			}
		})
	}
}

func TestLessonService_Delete(t *testing.T) {
	svc, _ := setupLessonService()

	assert.NoError(t, svc.Delete(context.Background(), owner, 10))
	assert.ErrorIs(t, svc.Delete(context.Background(), student, 10), models.ErrPermissionDenied)
	assert.ErrorIs(t, svc.Delete(context.Background(), owner, 99), models.ErrNotFound)
}
