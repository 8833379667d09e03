package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/courseplatform/backend/internal/auth/middleware"
	"github.com/courseplatform/backend/internal/auth/service"
	"github.com/courseplatform/backend/internal/cache"
	"github.com/courseplatform/backend/internal/config"
	"github.com/courseplatform/backend/internal/handlers"
	"github.com/courseplatform/backend/internal/models"
	"github.com/courseplatform/backend/internal/repositories"
	"github.com/courseplatform/backend/internal/services"
	"github.com/go-chi/chi/v5"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testSecret = "integration-secret"
	testAPIKey = "integration-key"
)

var (
	testDB     *sql.DB
	testRouter chi.Router
	testTokens *service.TokenGenerator
)

// TestMain sets up and tears down the test environment
func TestMain(m *testing.M) {
	cfg, err := config.LoadTestConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load test config: %v", err))
	}
	if cfg.Database.Host == "" {
		fmt.Println("TEST_DB_HOST not set, skipping integration tests")
		os.Exit(0)
	}

	testDB, err = sql.Open("mysql", cfg.DSN())
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to test database: %v", err))
	}
	if err = testDB.Ping(); err != nil {
		panic(fmt.Sprintf("Failed to ping test database: %v", err))
	}

	if err := migrateUp(testDB); err != nil {
		panic(fmt.Sprintf("Failed to run migrations: %v", err))
	}

	testTokens = service.NewTokenGenerator(testSecret, time.Hour, time.Hour)
	testRouter = setupTestRouter(testDB, zap.NewNop())

	code := m.Run()

	testDB.Close()
	os.Exit(code)
}

func migrateUp(db *sql.DB) error {
	driver, err := migratemysql.WithInstance(db, &migratemysql.Config{MigrationsTable: "course_schema_migrations"})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance("file://../../migrations", "mysql", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// setupTestRouter creates a test router with all handlers and the real auth middleware
func setupTestRouter(db *sql.DB, logger *zap.Logger) chi.Router {
	courseRepo := repositories.NewCourseRepository(db)
	lessonRepo := repositories.NewLessonRepository(db)
	quizRepo := repositories.NewQuizRepository(db)
	enrollmentRepo := repositories.NewEnrollmentRepository(db)
	progressRepo := repositories.NewProgressRepository(db)
	answerKeys := cache.NewAnswerKeyCache(nil, quizRepo, 0, logger)

	courseHandler := handlers.NewCourseHandler(services.NewCourseService(courseRepo, quizRepo, answerKeys, logger), logger)
	lessonHandler := handlers.NewLessonHandler(services.NewLessonService(courseRepo, lessonRepo, enrollmentRepo), logger)
	quizHandler := handlers.NewQuizHandler(services.NewQuizService(courseRepo, quizRepo, answerKeys, logger), logger)
	attemptHandler := handlers.NewAttemptHandler(
		services.NewAttemptService(answerKeys, enrollmentRepo, repositories.NewAttemptRepository(db), quizRepo, courseRepo, logger),
		false,
		logger,
	)
	enrollmentHandler := handlers.NewEnrollmentHandler(
		services.NewEnrollmentService(courseRepo, lessonRepo, enrollmentRepo, repositories.NewLessonCompletionRepository(db)),
		services.NewProgressService(progressRepo, enrollmentRepo),
		services.NewCertificateService(progressRepo, enrollmentRepo),
		logger,
	)
	reviewHandler := handlers.NewReviewHandler(services.NewReviewService(courseRepo, enrollmentRepo, repositories.NewReviewRepository(db)), logger)
	reportHandler := handlers.NewReportHandler(services.NewReportService(repositories.NewReportRepository(db)), logger)

	authMiddleware := middleware.AuthMiddleware(testTokens)
	optionalAuth := middleware.OptionalAuthMiddleware(testTokens)
	instructorMiddleware := middleware.RoleMiddleware(testTokens, int(models.RoleInstructor))
	adminMiddleware := middleware.RoleMiddleware(testTokens, int(models.RoleAdmin))

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		courseHandler.RegisterRoutes(r, optionalAuth, authMiddleware, instructorMiddleware)
		lessonHandler.RegisterRoutes(r, optionalAuth, instructorMiddleware)
		quizHandler.RegisterRoutes(r, optionalAuth, instructorMiddleware)
		attemptHandler.RegisterRoutes(r, authMiddleware, instructorMiddleware)
		enrollmentHandler.RegisterRoutes(r, authMiddleware)
		reviewHandler.RegisterRoutes(r, authMiddleware)
		reportHandler.RegisterRoutes(r, adminMiddleware, middleware.APIKeyMiddleware(testAPIKey))
	})
	return r
}

// seedUser upserts a user and returns it with a signed access token
func seedUser(t *testing.T, email, name string, role models.Role) (models.User, string) {
	t.Helper()
	user := models.User{Email: email, FullName: name, Role: role}
	require.NoError(t, repositories.NewUserRepository(testDB).Upsert(context.Background(), &user))
	token, _, err := testTokens.GenerateTokens(user.ID, int(role))
	require.NoError(t, err)
	return user, token
}

func cleanupTestData(t *testing.T) {
	t.Helper()
	// Everything a user owns is removed by cascade
	_, err := testDB.Exec("DELETE FROM users WHERE email LIKE '%@integration.test'")
	require.NoError(t, err, "Failed to cleanup users")
}

func doRequest(t *testing.T, method, path, token string, body any, dst any) int {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	testRouter.ServeHTTP(rec, req)

	if dst != nil && rec.Code < 300 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
	}
	return rec.Code
}

func TestIntegration_CourseFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	cleanupTestData(t)
	defer cleanupTestData(t)

	_, adminToken := seedUser(t, "admin@integration.test", "Admin", models.RoleAdmin)
	_, instructorToken := seedUser(t, "ada@integration.test", "Ada", models.RoleInstructor)
	student, studentToken := seedUser(t, "sam@integration.test", "Sam", models.RoleStudent)

	// Authoring
	var course models.Course
	status := doRequest(t, http.MethodPost, "/courses", instructorToken, models.CreateCourseRequest{Title: "Go basics", IsPublished: true}, &course)
	require.Equal(t, http.StatusCreated, status)

	var first, second models.Lesson
	require.Equal(t, http.StatusCreated, doRequest(t, http.MethodPost, fmt.Sprintf("/courses/%d/lessons", course.ID), instructorToken,
		models.CreateLessonRequest{Title: "Intro", DurationSeconds: 300}, &first))
	require.Equal(t, http.StatusCreated, doRequest(t, http.MethodPost, fmt.Sprintf("/courses/%d/lessons", course.ID), instructorToken,
		models.CreateLessonRequest{Title: "Handlers", DurationSeconds: 600}, &second))
	assert.Equal(t, 1, first.OrderIndex)
	assert.Equal(t, 2, second.OrderIndex)

	var quiz models.Quiz
	require.Equal(t, http.StatusCreated, doRequest(t, http.MethodPost, fmt.Sprintf("/courses/%d/quizzes", course.ID), instructorToken,
		models.CreateQuizRequest{
			Title: "Basics",
			Questions: []models.CreateQuestionRequest{
				{Text: "2+2?", Options: []models.CreateOptionRequest{{Text: "4", IsCorrect: true}, {Text: "5"}}},
				{Text: "Go keyword for goroutines?", Options: []models.CreateOptionRequest{{Text: "go", IsCorrect: true}, {Text: "async"}}},
			},
		}, &quiz))

	// Students never see option correctness
	var studentView models.Quiz
	require.Equal(t, http.StatusOK, doRequest(t, http.MethodGet, fmt.Sprintf("/quizzes/%d", quiz.ID), studentToken, nil, &studentView))
	require.Len(t, studentView.Questions, 2)
	for _, q := range studentView.Questions {
		for _, o := range q.Options {
			assert.Nil(t, o.IsCorrect)
		}
	}

	var instructorView models.Quiz
	require.Equal(t, http.StatusOK, doRequest(t, http.MethodGet, fmt.Sprintf("/quizzes/%d", quiz.ID), instructorToken, nil, &instructorView))
	require.Len(t, instructorView.Questions, 2)
	correctFirst := instructorView.Questions[0].Options[0].ID
	wrongSecond := instructorView.Questions[1].Options[1].ID

	// Submitting without enrollment is rejected
	submit := models.SubmitQuizRequest{Answers: []models.SubmittedAnswer{
		{QuestionID: instructorView.Questions[0].ID, SelectedOptionID: &correctFirst},
		{QuestionID: instructorView.Questions[1].ID, SelectedOptionID: &wrongSecond},
	}}
	assert.Equal(t, http.StatusForbidden, doRequest(t, http.MethodPost, fmt.Sprintf("/quizzes/%d/submit", quiz.ID), studentToken, submit, nil))

	// Learning
	require.Equal(t, http.StatusCreated, doRequest(t, http.MethodPost, fmt.Sprintf("/courses/%d/enroll", course.ID), studentToken, nil, nil))
	assert.Equal(t, http.StatusConflict, doRequest(t, http.MethodPost, fmt.Sprintf("/courses/%d/enroll", course.ID), studentToken, nil, nil))

	completePath := fmt.Sprintf("/courses/%d/lessons/%d/complete", course.ID, first.ID)
	require.Equal(t, http.StatusOK, doRequest(t, http.MethodPost, completePath, studentToken, nil, nil))
	require.Equal(t, http.StatusOK, doRequest(t, http.MethodPost, completePath, studentToken, nil, nil))

	var attempt models.QuizAttempt
	require.Equal(t, http.StatusCreated, doRequest(t, http.MethodPost, fmt.Sprintf("/quizzes/%d/submit", quiz.ID), studentToken, submit, &attempt))
	assert.Equal(t, 1, attempt.Score)
	assert.Equal(t, 2, attempt.Total)
	assert.True(t, attempt.Passed)
	assert.Equal(t, student.ID, attempt.UserID)
	for _, answer := range attempt.Answers {
		assert.Nil(t, answer.CorrectOptionID)
	}

	assert.Equal(t, http.StatusConflict, doRequest(t, http.MethodPost, fmt.Sprintf("/quizzes/%d/submit", quiz.ID), studentToken, submit, nil))

	var progress models.CourseProgress
	require.Equal(t, http.StatusOK, doRequest(t, http.MethodGet, fmt.Sprintf("/courses/%d/progress", course.ID), studentToken, nil, &progress))
	assert.Equal(t, 1, progress.CompletedLessons)
	assert.Equal(t, 1, progress.PassedQuizzes)
	assert.Equal(t, 66.67, progress.PercentComplete)

	var eligibility models.CertificateEligibility
	require.Equal(t, http.StatusOK, doRequest(t, http.MethodGet, fmt.Sprintf("/courses/%d/certificate", course.ID), studentToken, nil, &eligibility))
	assert.False(t, eligibility.Eligible)

	// Reporting
	var leaderboard []models.LeaderboardItem
	require.Equal(t, http.StatusOK, doRequest(t, http.MethodGet, "/leaderboard/global", "", nil, &leaderboard))
	var found bool
	for _, item := range leaderboard {
		if item.UserID == student.ID {
			found = true
			assert.Equal(t, 30, item.Points)
		}
	}
	assert.True(t, found)

	assert.Equal(t, http.StatusForbidden, doRequest(t, http.MethodGet, "/admin/reports/completion", studentToken, nil, nil))

	var completion []models.CompletionReportItem
	require.Equal(t, http.StatusOK, doRequest(t, http.MethodGet, "/admin/reports/completion", adminToken, nil, &completion))
	for _, item := range completion {
		if item.CourseID == course.ID {
			assert.Equal(t, 50.0, item.CompletionPercent)
		}
	}
}
