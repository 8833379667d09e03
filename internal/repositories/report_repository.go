package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/courseplatform/backend/internal/models"
)

// reportRepository reads the raw aggregates behind the admin reports.
// Every query is limited to published courses.
type reportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *sql.DB) *reportRepository {
	return &reportRepository{
		db: db,
	}
}

// GetEnrollmentCounts counts enrollments per published course, including courses without any
func (r *reportRepository) GetEnrollmentCounts(ctx context.Context) ([]models.EnrollmentReportItem, error) {
	query := `
		SELECT c.id, c.title, COUNT(e.id)
		FROM courses c
		LEFT JOIN enrollments e ON e.course_id = c.id
		WHERE c.is_published = TRUE
		GROUP BY c.id, c.title
		ORDER BY c.id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollment counts: %w", err)
	}
	defer rows.Close()

	items := []models.EnrollmentReportItem{}
	for rows.Next() {
		var item models.EnrollmentReportItem
		if err := rows.Scan(&item.CourseID, &item.Title, &item.EnrollmentCount); err != nil {
			return nil, fmt.Errorf("failed to scan enrollment count: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating enrollment counts: %w", err)
	}

	return items, nil
}

// GetCompletionStats returns per published course its lesson count, enrollment count
// and the number of distinct (user, lesson) completions made by enrolled users
func (r *reportRepository) GetCompletionStats(ctx context.Context) ([]models.CompletionReportItem, error) {
	query := `
		SELECT c.id, c.title,
			(SELECT COUNT(*) FROM lessons l WHERE l.course_id = c.id),
			(SELECT COUNT(*) FROM enrollments e WHERE e.course_id = c.id),
			(SELECT COUNT(DISTINCT lc.user_id, lc.lesson_id)
				FROM lesson_completions lc
				JOIN lessons l ON l.id = lc.lesson_id
				JOIN enrollments e ON e.user_id = lc.user_id AND e.course_id = l.course_id
				WHERE l.course_id = c.id)
		FROM courses c
		WHERE c.is_published = TRUE
		ORDER BY c.id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query completion stats: %w", err)
	}
	defer rows.Close()

	items := []models.CompletionReportItem{}
	for rows.Next() {
		var item models.CompletionReportItem
		if err := rows.Scan(&item.CourseID, &item.Title, &item.TotalLessons, &item.EnrollmentCount, &item.CompletedCount); err != nil {
			return nil, fmt.Errorf("failed to scan completion stats: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating completion stats: %w", err)
	}

	return items, nil
}

// GetLessonActivity returns every lesson of a published course with its duration and distinct completers
func (r *reportRepository) GetLessonActivity(ctx context.Context) ([]models.LessonActivity, error) {
	query := `
		SELECT c.id, c.title, l.id, l.title, COALESCE(l.duration_seconds, 0), COUNT(DISTINCT lc.user_id)
		FROM lessons l
		JOIN courses c ON c.id = l.course_id
		LEFT JOIN lesson_completions lc ON lc.lesson_id = l.id
		WHERE c.is_published = TRUE
		GROUP BY c.id, c.title, l.id, l.title, l.duration_seconds, l.order_index
		ORDER BY c.id, l.order_index, l.id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query lesson activity: %w", err)
	}
	defer rows.Close()

	items := []models.LessonActivity{}
	for rows.Next() {
		var item models.LessonActivity
		if err := rows.Scan(&item.CourseID, &item.CourseTitle, &item.LessonID, &item.LessonTitle, &item.DurationSeconds, &item.CompletionCount); err != nil {
			return nil, fmt.Errorf("failed to scan lesson activity: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lesson activity: %w", err)
	}

	return items, nil
}

// GetQuizActivity returns every quiz of a published course with its distinct attempting users
func (r *reportRepository) GetQuizActivity(ctx context.Context) ([]models.QuizActivity, error) {
	query := `
		SELECT c.id, q.id, q.title, COUNT(DISTINCT a.user_id)
		FROM quizzes q
		JOIN courses c ON c.id = q.course_id
		LEFT JOIN quiz_attempts a ON a.quiz_id = q.id
		WHERE c.is_published = TRUE
		GROUP BY c.id, q.id, q.title
		ORDER BY c.id, q.id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz activity: %w", err)
	}
	defer rows.Close()

	items := []models.QuizActivity{}
	for rows.Next() {
		var item models.QuizActivity
		if err := rows.Scan(&item.CourseID, &item.QuizID, &item.Title, &item.UserCount); err != nil {
			return nil, fmt.Errorf("failed to scan quiz activity: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quiz activity: %w", err)
	}

	return items, nil
}

// GetQuizAttemptScores groups the attempts on published quizzes by quiz, score and total
func (r *reportRepository) GetQuizAttemptScores(ctx context.Context) ([]models.AttemptScore, error) {
	query := `
		SELECT a.quiz_id, a.score, a.total, COUNT(*)
		FROM quiz_attempts a
		JOIN quizzes q ON q.id = a.quiz_id
		JOIN courses c ON c.id = q.course_id
		WHERE c.is_published = TRUE
		GROUP BY a.quiz_id, a.score, a.total
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz attempt scores: %w", err)
	}
	defer rows.Close()

	return scanAttemptScores(rows, 0)
}

// GetUserCompletions counts lesson completions per user
func (r *reportRepository) GetUserCompletions(ctx context.Context) ([]models.UserCompletions, error) {
	query := `
		SELECT u.id, u.full_name, COUNT(*)
		FROM lesson_completions lc
		JOIN users u ON u.id = lc.user_id
		JOIN lessons l ON l.id = lc.lesson_id
		JOIN courses c ON c.id = l.course_id
		WHERE c.is_published = TRUE
		GROUP BY u.id, u.full_name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query user completions: %w", err)
	}
	defer rows.Close()

	items := []models.UserCompletions{}
	for rows.Next() {
		var item models.UserCompletions
		if err := rows.Scan(&item.UserID, &item.FullName, &item.Count); err != nil {
			return nil, fmt.Errorf("failed to scan user completions: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user completions: %w", err)
	}

	return items, nil
}

// GetUserAttemptScores groups attempts per user, score and total
func (r *reportRepository) GetUserAttemptScores(ctx context.Context) ([]models.AttemptScore, error) {
	query := `
		SELECT u.id, u.full_name, a.score, a.total, COUNT(*)
		FROM quiz_attempts a
		JOIN users u ON u.id = a.user_id
		JOIN quizzes q ON q.id = a.quiz_id
		JOIN courses c ON c.id = q.course_id
		WHERE c.is_published = TRUE
		GROUP BY u.id, u.full_name, a.score, a.total
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query user attempt scores: %w", err)
	}
	defer rows.Close()

	items := []models.AttemptScore{}
	for rows.Next() {
		var item models.AttemptScore
		if err := rows.Scan(&item.UserID, &item.FullName, &item.Score, &item.Total, &item.Count); err != nil {
			return nil, fmt.Errorf("failed to scan user attempt score: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user attempt scores: %w", err)
	}

	return items, nil
}
