package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/courseplatform/backend/internal/models"
)

const lessonColumns = `id, course_id, title, order_index, COALESCE(content, ''), video_url,
	COALESCE(duration_seconds, 0), is_preview, created_at, updated_at`

type lessonRepository struct {
	db *sql.DB
}

// NewLessonRepository creates a new lesson repository
func NewLessonRepository(db *sql.DB) *lessonRepository {
	return &lessonRepository{
		db: db,
	}
}

func scanLesson(row rowScanner, lesson *models.Lesson) error {
	return row.Scan(
		&lesson.ID,
		&lesson.CourseID,
		&lesson.Title,
		&lesson.OrderIndex,
		&lesson.Content,
		&lesson.VideoURL,
		&lesson.DurationSeconds,
		&lesson.IsPreview,
		&lesson.CreatedAt,
		&lesson.UpdatedAt,
	)
}

// GetByID retrieves a lesson by its ID
func (r *lessonRepository) GetByID(ctx context.Context, id int) (*models.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE id = ? LIMIT 1`

	var lesson models.Lesson
	err := scanLesson(r.db.QueryRowContext(ctx, query, id), &lesson)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lesson %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson by id: %w", err)
	}

	return &lesson, nil
}

// GetByCourse retrieves the lessons of a course in order.
// "previewOnly" restricts the result to preview lessons.
func (r *lessonRepository) GetByCourse(ctx context.Context, courseID int, previewOnly bool) ([]models.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE course_id = ?`
	if previewOnly {
		query += ` AND is_preview = TRUE`
	}
	query += ` ORDER BY order_index, id`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	lessons := []models.Lesson{}
	for rows.Next() {
		var lesson models.Lesson
		if err := scanLesson(rows, &lesson); err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		lessons = append(lessons, lesson)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lessons: %w", err)
	}

	return lessons, nil
}

// Create creates a new lesson at the end of its course
func (r *lessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Lock the course row so concurrent creates do not pick the same index.
	var courseID int
	err = tx.QueryRowContext(ctx, `SELECT id FROM courses WHERE id = ? FOR UPDATE`, lesson.CourseID).Scan(&courseID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("course %d: %w", lesson.CourseID, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to lock course: %w", err)
	}

	var orderIndex int
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(order_index), 0) + 1 FROM lessons WHERE course_id = ?`, lesson.CourseID).Scan(&orderIndex)
	if err != nil {
		return fmt.Errorf("failed to get next order index: %w", err)
	}

	query := `
		INSERT INTO lessons (course_id, title, order_index, content, video_url, duration_seconds, is_preview)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := tx.ExecContext(ctx, query,
		lesson.CourseID,
		lesson.Title,
		orderIndex,
		lesson.Content,
		lesson.VideoURL,
		lesson.DurationSeconds,
		lesson.IsPreview,
	)
	if err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	lesson.ID = int(id)
	lesson.OrderIndex = orderIndex
	return nil
}

// Update applies a partial update to a lesson
func (r *lessonRepository) Update(ctx context.Context, id int, req *models.UpdateLessonRequest) error {
	var setParts []string
	var args []any

	if req.Title != nil {
		setParts = append(setParts, "title = ?")
		args = append(args, *req.Title)
	}
	if req.Content != nil {
		setParts = append(setParts, "content = ?")
		args = append(args, *req.Content)
	}
	if req.VideoURL != nil {
		setParts = append(setParts, "video_url = ?")
		args = append(args, *req.VideoURL)
	}
	if req.DurationSeconds != nil {
		setParts = append(setParts, "duration_seconds = ?")
		args = append(args, *req.DurationSeconds)
	}
	if req.IsPreview != nil {
		setParts = append(setParts, "is_preview = ?")
		args = append(args, *req.IsPreview)
	}

	if len(setParts) == 0 {
		return fmt.Errorf("%w: no fields to update", models.ErrValidation)
	}

	query := fmt.Sprintf(`UPDATE lessons SET %s WHERE id = ?`, strings.Join(setParts, ", "))
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update lesson: %w", err)
	}

	return checkAffected(result, fmt.Sprintf("lesson %d", id))
}

// Reorder assigns order indexes 1..n following the given lesson IDs
func (r *lessonRepository) Reorder(ctx context.Context, courseID int, lessonIDs []int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i, lessonID := range lessonIDs {
		if _, err := tx.ExecContext(ctx, `UPDATE lessons SET order_index = ? WHERE id = ? AND course_id = ?`, i+1, lessonID, courseID); err != nil {
			return fmt.Errorf("failed to reorder lesson %d: %w", lessonID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete deletes a lesson and its completions
func (r *lessonRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM lessons WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}

	return checkAffected(result, fmt.Sprintf("lesson %d", id))
}
