package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/courseplatform/backend/internal/models"
)

type progressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db *sql.DB) *progressRepository {
	return &progressRepository{
		db: db,
	}
}

// CourseExists checks if a course exists
func (r *progressRepository) CourseExists(ctx context.Context, courseID int) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM courses WHERE id = ?)`, courseID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check course existence: %w", err)
	}
	return exists, nil
}

// CountContent counts the lessons and quizzes of a course and the distinct lessons the user completed
func (r *progressRepository) CountContent(ctx context.Context, userID, courseID int) (*models.CourseProgress, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM lessons WHERE course_id = ?),
			(SELECT COUNT(DISTINCT lc.lesson_id)
				FROM lesson_completions lc
				JOIN lessons l ON l.id = lc.lesson_id
				WHERE l.course_id = ? AND lc.user_id = ?),
			(SELECT COUNT(*) FROM quizzes WHERE course_id = ?)
	`

	progress := models.CourseProgress{CourseID: courseID}
	err := r.db.QueryRowContext(ctx, query, courseID, courseID, userID, courseID).Scan(
		&progress.TotalLessons,
		&progress.CompletedLessons,
		&progress.TotalQuizzes,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count course content: %w", err)
	}

	return &progress, nil
}

// GetAttemptScores groups the user's attempts on the course's quizzes by quiz, score and total
func (r *progressRepository) GetAttemptScores(ctx context.Context, userID, courseID int) ([]models.AttemptScore, error) {
	query := `
		SELECT a.quiz_id, a.score, a.total, COUNT(*)
		FROM quiz_attempts a
		JOIN quizzes q ON q.id = a.quiz_id
		WHERE q.course_id = ? AND a.user_id = ?
		GROUP BY a.quiz_id, a.score, a.total
	`

	rows, err := r.db.QueryContext(ctx, query, courseID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempt scores: %w", err)
	}
	defer rows.Close()

	return scanAttemptScores(rows, userID)
}

func scanAttemptScores(rows *sql.Rows, userID int) ([]models.AttemptScore, error) {
	scores := []models.AttemptScore{}
	for rows.Next() {
		score := models.AttemptScore{UserID: userID}
		if err := rows.Scan(&score.QuizID, &score.Score, &score.Total, &score.Count); err != nil {
			return nil, fmt.Errorf("failed to scan attempt score: %w", err)
		}
		scores = append(scores, score)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attempt scores: %w", err)
	}
	return scores, nil
}
