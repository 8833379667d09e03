package services

import (
	"context"
	"errors"
	"testing"

	"github.com/courseplatform/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportService_EnrollmentReport(t *testing.T) {
	repo := &mockReportRepository{enrollments: []models.EnrollmentReportItem{
		{CourseID: 1, Title: "Go", EnrollmentCount: 3},
	}}
	svc := NewReportService(repo)

	items, err := svc.EnrollmentReport(context.Background())

	require.NoError(t, err)
	assert.Equal(t, repo.enrollments, items)
}

func TestReportService_CompletionReport(t *testing.T) {
	repo := &mockReportRepository{completions: []models.CompletionReportItem{
		{CourseID: 1, Title: "Go", TotalLessons: 4, EnrollmentCount: 2, CompletedCount: 4},
		{CourseID: 2, Title: "Empty", TotalLessons: 0, EnrollmentCount: 5},
		{CourseID: 3, Title: "Unvisited", TotalLessons: 3, EnrollmentCount: 0},
		{CourseID: 4, Title: "Rust", TotalLessons: 3, EnrollmentCount: 1, CompletedCount: 2},
	}}
	svc := NewReportService(repo)

	items, err := svc.CompletionReport(context.Background())

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].CourseID)
	assert.Equal(t, 50.0, items[0].CompletionPercent)
	assert.Equal(t, 4, items[1].CourseID)
	assert.Equal(t, 66.67, items[1].CompletionPercent)
}

func TestReportService_DropoffReport(t *testing.T) {
	repo := &mockReportRepository{
		lessons: []models.LessonActivity{
			{CourseID: 1, LessonID: 10, LessonTitle: "Intro", CompletionCount: 0},
			{CourseID: 1, LessonID: 11, LessonTitle: "Types", CompletionCount: 0},
			{CourseID: 1, LessonID: 12, LessonTitle: "Funcs", CompletionCount: 2},
			{CourseID: 2, LessonID: 20, LessonTitle: "Basics", CompletionCount: 3},
		},
		quizzes: []models.QuizActivity{
			{CourseID: 1, QuizID: 100, Title: "Quiz 1", UserCount: 1},
			{CourseID: 2, QuizID: 200, Title: "Quiz 2", UserCount: 1},
		},
	}
	svc := NewReportService(repo)

	items, err := svc.DropoffReport(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []models.DropoffReportItem{
		{CourseID: 1, Type: models.DropoffItemLesson, ItemID: 10, Title: "Intro", UserCount: 0},
		{CourseID: 1, Type: models.DropoffItemLesson, ItemID: 11, Title: "Types", UserCount: 0},
		{CourseID: 2, Type: models.DropoffItemQuiz, ItemID: 200, Title: "Quiz 2", UserCount: 1},
	}, items)
}

func TestReportService_AverageTimeReport(t *testing.T) {
	repo := &mockReportRepository{lessons: []models.LessonActivity{
		{CourseID: 1, CourseTitle: "Go", LessonID: 10, LessonTitle: "Intro", DurationSeconds: 600, CompletionCount: 2},
		{CourseID: 1, CourseTitle: "Go", LessonID: 11, LessonTitle: "Types", DurationSeconds: 300, CompletionCount: 1},
		{CourseID: 1, CourseTitle: "Go", LessonID: 12, LessonTitle: "Reading", DurationSeconds: 0, CompletionCount: 5},
		{CourseID: 1, CourseTitle: "Go", LessonID: 13, LessonTitle: "Unseen", DurationSeconds: 900, CompletionCount: 0},
		{CourseID: 2, CourseTitle: "Rust", LessonID: 20, LessonTitle: "Text", DurationSeconds: 0, CompletionCount: 3},
	}}
	svc := NewReportService(repo)

	items, err := svc.AverageTimeReport(context.Background())

	require.NoError(t, err)
	require.Len(t, items, 7)

	assert.Equal(t, models.AvgTimeScopeCourse, items[0].Scope)
	assert.Equal(t, 1, items[0].CourseID)
	assert.Nil(t, items[0].LessonID)
	assert.Equal(t, 500.0, items[0].AverageSeconds)
	assert.Equal(t, 3, items[0].CompletionCount)

	assert.Equal(t, models.AvgTimeScopeLesson, items[1].Scope)
	assert.Equal(t, intPtr(10), items[1].LessonID)
	assert.Equal(t, 600.0, items[1].AverageSeconds)

	assert.Equal(t, models.AvgTimeScopeCourse, items[5].Scope)
	assert.Equal(t, 2, items[5].CourseID)
	assert.Equal(t, 0.0, items[5].AverageSeconds)
}

func TestReportService_QuizPerformanceReport(t *testing.T) {
	repo := &mockReportRepository{
		quizzes: []models.QuizActivity{
			{CourseID: 1, QuizID: 100, Title: "Quiz 1", UserCount: 3},
			{CourseID: 1, QuizID: 101, Title: "Quiz 2"},
		},
		quizScores: []models.AttemptScore{
			{QuizID: 100, Score: 2, Total: 4, Count: 2},
			{QuizID: 100, Score: 1, Total: 4, Count: 1},
			{QuizID: 100, Score: 0, Total: 0, Count: 1},
		},
	}
	svc := NewReportService(repo)

	items, err := svc.QuizPerformanceReport(context.Background())

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 3, items[0].AttemptCount)
	assert.Equal(t, 41.67, items[0].AverageScore)
	assert.Equal(t, 66.67, items[0].PassRate)
	assert.Equal(t, models.QuizPerformanceItem{QuizID: 101, CourseID: 1, Title: "Quiz 2"}, items[1])
}

func TestReportService_Leaderboard(t *testing.T) {
	repo := &mockReportRepository{
		userLessons: []models.UserCompletions{
			{UserID: 1, FullName: "Alice", Count: 2},
			{UserID: 2, FullName: "Bob", Count: 5},
		},
		userScores: []models.AttemptScore{
			{UserID: 1, FullName: "Alice", Score: 1, Total: 2, Count: 1},
			{UserID: 3, FullName: "Carol", Score: 0, Total: 2, Count: 4},
			{UserID: 4, FullName: "Dave", Score: 3, Total: 3, Count: 2},
		},
	}
	svc := NewReportService(repo)

	items, err := svc.Leaderboard(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []models.LeaderboardItem{
		{UserID: 2, FullName: "Bob", LessonCompletions: 5, Points: 50},
		{UserID: 1, FullName: "Alice", LessonCompletions: 2, PassedAttempts: 1, Points: 40},
		{UserID: 4, FullName: "Dave", PassedAttempts: 2, Points: 40},
	}, items)
}

func TestReportService_RepositoryError(t *testing.T) {
	svc := NewReportService(&mockReportRepository{err: errors.New("database error")})
	ctx := context.Background()

	_, err := svc.CompletionReport(ctx)
	assert.Error(t, err)
	_, err = svc.DropoffReport(ctx)
	assert.Error(t, err)
	_, err = svc.AverageTimeReport(ctx)
	assert.Error(t, err)
	_, err = svc.QuizPerformanceReport(ctx)
	assert.Error(t, err)
	_, err = svc.Leaderboard(ctx)
	assert.Error(t, err)
}
