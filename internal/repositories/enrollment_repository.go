package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/courseplatform/backend/internal/models"
)

type enrollmentRepository struct {
	db *sql.DB
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(db *sql.DB) *enrollmentRepository {
	return &enrollmentRepository{
		db: db,
	}
}

// Exists checks if a user is enrolled in a course
func (r *enrollmentRepository) Exists(ctx context.Context, userID, courseID int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM enrollments WHERE user_id = ? AND course_id = ?)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, courseID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check enrollment existence: %w", err)
	}

	return exists, nil
}

// Create creates a new enrollment.
// Returns an error wrapping models.ErrConflict if the user is already enrolled.
func (r *enrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	query := `
		INSERT INTO enrollments (user_id, course_id, enrolled_at)
		VALUES (?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, enrollment.UserID, enrollment.CourseID, enrollment.EnrolledAt)
	if isDuplicateKey(err) {
		return fmt.Errorf("%w: user %d already enrolled in course %d", models.ErrConflict, enrollment.UserID, enrollment.CourseID)
	}
	if err != nil {
		return fmt.Errorf("failed to create enrollment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	enrollment.ID = int(id)
	return nil
}

// GetByUser retrieves the enrollments of a user with their courses, newest first
func (r *enrollmentRepository) GetByUser(ctx context.Context, userID int) ([]models.EnrollmentWithProgress, error) {
	query := `
		SELECT e.id, e.user_id, e.course_id, e.last_lesson_id, e.enrolled_at, ` + courseColumns + `
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		WHERE e.user_id = ?
		ORDER BY e.enrolled_at DESC, e.id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer rows.Close()

	items := []models.EnrollmentWithProgress{}
	for rows.Next() {
		var (
			item         models.EnrollmentWithProgress
			lastLessonID sql.NullInt64
			price        sql.NullFloat64
		)
		if err := rows.Scan(
			&item.Enrollment.ID,
			&item.Enrollment.UserID,
			&item.Enrollment.CourseID,
			&lastLessonID,
			&item.Enrollment.EnrolledAt,
			&item.Course.ID,
			&item.Course.InstructorID,
			&item.Course.Title,
			&item.Course.Subtitle,
			&item.Course.Description,
			&item.Course.Category,
			&item.Course.Language,
			&item.Course.Level,
			&price,
			&item.Course.ThumbnailURL,
			&item.Course.IsPublished,
			&item.Course.AverageRating,
			&item.Course.CreatedAt,
			&item.Course.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		if lastLessonID.Valid {
			id := int(lastLessonID.Int64)
			item.Enrollment.LastLessonID = &id
		}
		if price.Valid {
			item.Course.Price = &price.Float64
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating enrollments: %w", err)
	}

	return items, nil
}
