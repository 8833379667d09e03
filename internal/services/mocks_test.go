package services

import (
	"context"
	"fmt"
	"time"

	"github.com/courseplatform/backend/internal/models"
	"github.com/courseplatform/backend/internal/scoring"
)

// mockCourseRepository is an in-memory implementation of CourseRepository
type mockCourseRepository struct {
	courses    map[int]*models.Course
	lastFilter models.CourseFilter
	lastUpdate *models.UpdateCourseRequest
	deletedID  int
	nextID     int
	err        error
}

func newMockCourseRepository(courses ...models.Course) *mockCourseRepository {
	m := &mockCourseRepository{courses: make(map[int]*models.Course), nextID: 100}
	for i := range courses {
		c := courses[i]
		m.courses[c.ID] = &c
	}
	return m
}

func (m *mockCourseRepository) GetByID(ctx context.Context, id int) (*models.Course, error) {
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.courses[id]
	if !ok {
		return nil, fmt.Errorf("course %d: %w", id, models.ErrNotFound)
	}
	copied := *c
	return &copied, nil
}

func (m *mockCourseRepository) GetAll(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	m.lastFilter = filter
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Course
	for _, c := range m.courses {
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockCourseRepository) Create(ctx context.Context, course *models.Course) error {
	if m.err != nil {
		return m.err
	}
	m.nextID++
	course.ID = m.nextID
	copied := *course
	m.courses[course.ID] = &copied
	return nil
}

func (m *mockCourseRepository) Update(ctx context.Context, id int, req *models.UpdateCourseRequest) error {
	if m.err != nil {
		return m.err
	}
	m.lastUpdate = req
	if req.Title != nil {
		m.courses[id].Title = *req.Title
	}
	return nil
}

func (m *mockCourseRepository) Delete(ctx context.Context, id int) error {
	if m.err != nil {
		return m.err
	}
	m.deletedID = id
	delete(m.courses, id)
	return nil
}

// mockLessonRepository is an in-memory implementation of LessonRepository
type mockLessonRepository struct {
	lessons      []models.Lesson
	reordered    []int
	previewAsked *bool
	err          error
}

func (m *mockLessonRepository) GetByID(ctx context.Context, id int) (*models.Lesson, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, l := range m.lessons {
		if l.ID == id {
			copied := l
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("lesson %d: %w", id, models.ErrNotFound)
}

func (m *mockLessonRepository) GetByCourse(ctx context.Context, courseID int, previewOnly bool) ([]models.Lesson, error) {
	m.previewAsked = &previewOnly
	if m.err != nil {
		return nil, m.err
	}
	out := []models.Lesson{}
	for _, l := range m.lessons {
		if l.CourseID == courseID && (!previewOnly || l.IsPreview) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockLessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	if m.err != nil {
		return m.err
	}
	lesson.ID = len(m.lessons) + 1000
	lesson.OrderIndex = len(m.lessons) + 1
	m.lessons = append(m.lessons, *lesson)
	return nil
}

func (m *mockLessonRepository) Update(ctx context.Context, id int, req *models.UpdateLessonRequest) error {
	if m.err != nil {
		return m.err
	}
	for i := range m.lessons {
		if m.lessons[i].ID == id && req.Title != nil {
			m.lessons[i].Title = *req.Title
		}
	}
	return nil
}

func (m *mockLessonRepository) Reorder(ctx context.Context, courseID int, lessonIDs []int) error {
	if m.err != nil {
		return m.err
	}
	m.reordered = lessonIDs
	for pos, id := range lessonIDs {
		for i := range m.lessons {
			if m.lessons[i].ID == id {
				m.lessons[i].OrderIndex = pos + 1
			}
		}
	}
	return nil
}

func (m *mockLessonRepository) Delete(ctx context.Context, id int) error {
	return m.err
}

// mockEnrollmentRepository is an in-memory implementation of EnrollmentRepository
type mockEnrollmentRepository struct {
	enrolled map[[2]int]bool
	items    []models.EnrollmentWithProgress
	err      error
}

func newMockEnrollmentRepository(pairs ...[2]int) *mockEnrollmentRepository {
	m := &mockEnrollmentRepository{enrolled: make(map[[2]int]bool)}
	for _, p := range pairs {
		m.enrolled[p] = true
	}
	return m
}

func (m *mockEnrollmentRepository) Exists(ctx context.Context, userID, courseID int) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.enrolled[[2]int{userID, courseID}], nil
}

func (m *mockEnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if m.err != nil {
		return m.err
	}
	key := [2]int{enrollment.UserID, enrollment.CourseID}
	if m.enrolled[key] {
		return fmt.Errorf("enrollment: %w", models.ErrConflict)
	}
	m.enrolled[key] = true
	enrollment.ID = len(m.enrolled)
	return nil
}

func (m *mockEnrollmentRepository) GetByUser(ctx context.Context, userID int) ([]models.EnrollmentWithProgress, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.items, nil
}

// mockCompletionRepository records lesson completions
type mockCompletionRepository struct {
	completed map[[2]int]time.Time
	err       error
}

func (m *mockCompletionRepository) Complete(ctx context.Context, userID, courseID, lessonID int, completedAt time.Time) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if m.completed == nil {
		m.completed = make(map[[2]int]time.Time)
	}
	key := [2]int{userID, lessonID}
	if _, ok := m.completed[key]; ok {
		return false, nil
	}
	m.completed[key] = completedAt
	return true, nil
}

// mockQuizRepository is an in-memory implementation of QuizRepository
type mockQuizRepository struct {
	quizzes map[int]*models.Quiz
	list    []models.QuizListItem
	added   *models.CreateQuestionRequest
	deleted [2]int
	err     error
}

func newMockQuizRepository(quizzes ...models.Quiz) *mockQuizRepository {
	m := &mockQuizRepository{quizzes: make(map[int]*models.Quiz)}
	for i := range quizzes {
		q := quizzes[i]
		m.quizzes[q.ID] = &q
	}
	return m
}

func (m *mockQuizRepository) get(id int) (*models.Quiz, error) {
	if m.err != nil {
		return nil, m.err
	}
	q, ok := m.quizzes[id]
	if !ok {
		return nil, fmt.Errorf("quiz %d: %w", id, models.ErrNotFound)
	}
	copied := *q
	copied.Questions = make([]models.Question, len(q.Questions))
	for i, question := range q.Questions {
		copied.Questions[i] = question
		copied.Questions[i].Options = append([]models.Option(nil), question.Options...)
	}
	return &copied, nil
}

func (m *mockQuizRepository) GetByID(ctx context.Context, id int) (*models.Quiz, error) {
	q, err := m.get(id)
	if err != nil {
		return nil, err
	}
	q.Questions = nil
	return q, nil
}

func (m *mockQuizRepository) GetWithQuestions(ctx context.Context, id int) (*models.Quiz, error) {
	return m.get(id)
}

func (m *mockQuizRepository) GetByCourse(ctx context.Context, courseID int) ([]models.QuizListItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.list, nil
}

func (m *mockQuizRepository) Create(ctx context.Context, quiz *models.Quiz, questions []models.CreateQuestionRequest) error {
	if m.err != nil {
		return m.err
	}
	quiz.ID = 500
	for i, q := range questions {
		quiz.Questions = append(quiz.Questions, models.Question{ID: i + 1, QuizID: quiz.ID, Text: q.Text, DisplayOrder: i + 1})
	}
	return nil
}

func (m *mockQuizRepository) AddQuestion(ctx context.Context, quizID int, req *models.CreateQuestionRequest) (*models.Question, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.added = req
	return &models.Question{ID: 77, QuizID: quizID, Text: req.Text, DisplayOrder: 1}, nil
}

func (m *mockQuizRepository) Delete(ctx context.Context, quizID, courseID int) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = [2]int{quizID, courseID}
	return nil
}

// mockAnswerKeys serves fixed answer keys and records invalidations
type mockAnswerKeys struct {
	keys        map[int]*scoring.AnswerKey
	invalidated []int
	err         error
	invalidErr  error
}

func (m *mockAnswerKeys) LoadAnswerKey(ctx context.Context, quizID int) (*scoring.AnswerKey, error) {
	if m.err != nil {
		return nil, m.err
	}
	key, ok := m.keys[quizID]
	if !ok {
		return nil, fmt.Errorf("quiz %d: %w", quizID, models.ErrNotFound)
	}
	return key, nil
}

func (m *mockAnswerKeys) Invalidate(ctx context.Context, quizID int) error {
	m.invalidated = append(m.invalidated, quizID)
	return m.invalidErr
}

// mockAttemptRepository is an in-memory attempt ledger honoring the retry flag of each quiz
type mockAttemptRepository struct {
	allowRetry map[int]bool
	attempts   []models.QuizAttempt
	lastUserID int
	err        error
}

func (m *mockAttemptRepository) Submit(ctx context.Context, attempt *models.QuizAttempt) error {
	if m.err != nil {
		return m.err
	}
	if !m.allowRetry[attempt.QuizID] {
		for _, a := range m.attempts {
			if a.QuizID == attempt.QuizID && a.UserID == attempt.UserID {
				return fmt.Errorf("%w: quiz %d already attempted", models.ErrConflict, attempt.QuizID)
			}
		}
	}
	attempt.ID = len(m.attempts) + 1
	m.attempts = append(m.attempts, *attempt)
	return nil
}

func (m *mockAttemptRepository) GetByQuiz(ctx context.Context, quizID, userID int) ([]models.QuizAttempt, error) {
	m.lastUserID = userID
	if m.err != nil {
		return nil, m.err
	}
	out := []models.QuizAttempt{}
	for _, a := range m.attempts {
		if a.QuizID == quizID && (userID == 0 || a.UserID == userID) {
			out = append(out, a)
		}
	}
	return out, nil
}

// mockProgressRepository serves fixed progress counts
type mockProgressRepository struct {
	exists    bool
	counts    models.CourseProgress
	scores    []models.AttemptScore
	existsErr error
	err       error
}

func (m *mockProgressRepository) CourseExists(ctx context.Context, courseID int) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	return m.exists, nil
}

func (m *mockProgressRepository) CountContent(ctx context.Context, userID, courseID int) (*models.CourseProgress, error) {
	if m.err != nil {
		return nil, m.err
	}
	counts := m.counts
	counts.CourseID = courseID
	return &counts, nil
}

func (m *mockProgressRepository) GetAttemptScores(ctx context.Context, userID, courseID int) ([]models.AttemptScore, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.scores, nil
}

// mockReviewRepository is an in-memory implementation of ReviewRepository
type mockReviewRepository struct {
	reviews map[int]*models.Review
	updated *models.UpdateReviewRequest
	deleted int
	err     error
}

func newMockReviewRepository(reviews ...models.Review) *mockReviewRepository {
	m := &mockReviewRepository{reviews: make(map[int]*models.Review)}
	for i := range reviews {
		r := reviews[i]
		m.reviews[r.ID] = &r
	}
	return m
}

func (m *mockReviewRepository) GetByCourse(ctx context.Context, courseID int) ([]models.Review, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []models.Review{}
	for _, r := range m.reviews {
		if r.CourseID == courseID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockReviewRepository) GetByID(ctx context.Context, id int) (*models.Review, error) {
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.reviews[id]
	if !ok {
		return nil, fmt.Errorf("review %d: %w", id, models.ErrNotFound)
	}
	copied := *r
	return &copied, nil
}

func (m *mockReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if m.err != nil {
		return m.err
	}
	for _, r := range m.reviews {
		if r.UserID == review.UserID && r.CourseID == review.CourseID {
			return fmt.Errorf("review: %w", models.ErrConflict)
		}
	}
	review.ID = len(m.reviews) + 1
	copied := *review
	m.reviews[review.ID] = &copied
	return nil
}

func (m *mockReviewRepository) Update(ctx context.Context, review *models.Review, req *models.UpdateReviewRequest) error {
	if m.err != nil {
		return m.err
	}
	m.updated = req
	if req.Rating != nil {
		m.reviews[review.ID].Rating = *req.Rating
	}
	return nil
}

func (m *mockReviewRepository) Delete(ctx context.Context, review *models.Review) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = review.ID
	delete(m.reviews, review.ID)
	return nil
}

// mockReportRepository serves fixed report rows
type mockReportRepository struct {
	enrollments []models.EnrollmentReportItem
	completions []models.CompletionReportItem
	lessons     []models.LessonActivity
	quizzes     []models.QuizActivity
	quizScores  []models.AttemptScore
	userLessons []models.UserCompletions
	userScores  []models.AttemptScore
	err         error
}

func (m *mockReportRepository) GetEnrollmentCounts(ctx context.Context) ([]models.EnrollmentReportItem, error) {
	return m.enrollments, m.err
}

func (m *mockReportRepository) GetCompletionStats(ctx context.Context) ([]models.CompletionReportItem, error) {
	return m.completions, m.err
}

func (m *mockReportRepository) GetLessonActivity(ctx context.Context) ([]models.LessonActivity, error) {
	return m.lessons, m.err
}

func (m *mockReportRepository) GetQuizActivity(ctx context.Context) ([]models.QuizActivity, error) {
	return m.quizzes, m.err
}

func (m *mockReportRepository) GetQuizAttemptScores(ctx context.Context) ([]models.AttemptScore, error) {
	return m.quizScores, m.err
}

func (m *mockReportRepository) GetUserCompletions(ctx context.Context) ([]models.UserCompletions, error) {
	return m.userLessons, m.err
}

func (m *mockReportRepository) GetUserAttemptScores(ctx context.Context) ([]models.AttemptScore, error) {
	return m.userScores, m.err
}

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}

func boolPtr(v bool) *bool {
	return &v
}
