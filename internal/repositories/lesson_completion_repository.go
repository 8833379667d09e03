package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type lessonCompletionRepository struct {
	db *sql.DB
}

// NewLessonCompletionRepository creates a new lesson completion repository
func NewLessonCompletionRepository(db *sql.DB) *lessonCompletionRepository {
	return &lessonCompletionRepository{
		db: db,
	}
}

// Complete marks a lesson as completed by a user and moves the enrollment's last lesson pointer.
// Completing a lesson twice keeps the first completion; the result reports whether a row was added.
func (r *lessonCompletionRepository) Complete(ctx context.Context, userID, courseID, lessonID int, completedAt time.Time) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT IGNORE INTO lesson_completions (user_id, lesson_id, completed_at) VALUES (?, ?, ?)`,
		userID, lessonID, completedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to record lesson completion: %w", err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE enrollments SET last_lesson_id = ? WHERE user_id = ? AND course_id = ?`,
		lessonID, userID, courseID,
	); err != nil {
		return false, fmt.Errorf("failed to update last lesson: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return inserted > 0, nil
}
