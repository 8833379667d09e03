package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/courseplatform/backend/internal/models"
)

const courseColumns = `c.id, c.instructor_id, c.title, c.subtitle, COALESCE(c.description, ''), c.category, c.language,
	c.level, c.price, c.thumbnail_url, c.is_published, c.average_rating, c.created_at, c.updated_at`

type courseRepository struct {
	db *sql.DB
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *sql.DB) *courseRepository {
	return &courseRepository{
		db: db,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(row rowScanner, course *models.Course) error {
	var price sql.NullFloat64
	if err := row.Scan(
		&course.ID,
		&course.InstructorID,
		&course.Title,
		&course.Subtitle,
		&course.Description,
		&course.Category,
		&course.Language,
		&course.Level,
		&price,
		&course.ThumbnailURL,
		&course.IsPublished,
		&course.AverageRating,
		&course.CreatedAt,
		&course.UpdatedAt,
	); err != nil {
		return err
	}
	if price.Valid {
		course.Price = &price.Float64
	}
	return nil
}

// GetByID retrieves a course by its ID
func (r *courseRepository) GetByID(ctx context.Context, id int) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses c WHERE c.id = ? LIMIT 1`

	var course models.Course
	err := scanCourse(r.db.QueryRowContext(ctx, query, id), &course)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("course %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course by id: %w", err)
	}

	return &course, nil
}

// GetAll retrieves courses with filtering and pagination
func (r *courseRepository) GetAll(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	var whereClauses []string
	var args []any

	if filter.PublishedOnly {
		whereClauses = append(whereClauses, "c.is_published = TRUE")
	}
	if filter.InstructorID != 0 {
		whereClauses = append(whereClauses, "c.instructor_id = ?")
		args = append(args, filter.InstructorID)
	}
	if filter.Category != "" {
		whereClauses = append(whereClauses, "c.category = ?")
		args = append(args, filter.Category)
	}
	if filter.Level != "" {
		whereClauses = append(whereClauses, "c.level = ?")
		args = append(args, filter.Level)
	}
	if filter.Search != "" {
		whereClauses = append(whereClauses, "c.title LIKE ?")
		args = append(args, "%"+filter.Search+"%")
	}

	whereClause := ""
	if len(whereClauses) > 0 {
		whereClause = "WHERE " + strings.Join(whereClauses, " AND ")
	}

	offset := (filter.Page - 1) * filter.Count
	query := fmt.Sprintf(`SELECT %s FROM courses c %s ORDER BY c.id LIMIT ? OFFSET ?`, courseColumns, whereClause)
	args = append(args, filter.Count, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	courses := []models.Course{}
	for rows.Next() {
		var course models.Course
		if err := scanCourse(rows, &course); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating courses: %w", err)
	}

	return courses, nil
}

// Create creates a new course
func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	query := `
		INSERT INTO courses (instructor_id, title, subtitle, description, category, language, level, price, thumbnail_url, is_published)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		course.InstructorID,
		course.Title,
		course.Subtitle,
		course.Description,
		course.Category,
		course.Language,
		course.Level,
		course.Price,
		course.ThumbnailURL,
		course.IsPublished,
	)
	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	course.ID = int(id)
	return nil
}

// Update applies a partial update to a course
func (r *courseRepository) Update(ctx context.Context, id int, req *models.UpdateCourseRequest) error {
	var setParts []string
	var args []any

	set := func(column string, value any) {
		setParts = append(setParts, column+" = ?")
		args = append(args, value)
	}
	if req.Title != nil {
		set("title", *req.Title)
	}
	if req.Subtitle != nil {
		set("subtitle", *req.Subtitle)
	}
	if req.Description != nil {
		set("description", *req.Description)
	}
	if req.Category != nil {
		set("category", *req.Category)
	}
	if req.Language != nil {
		set("language", *req.Language)
	}
	if req.Level != nil {
		set("level", *req.Level)
	}
	if req.Price != nil {
		set("price", *req.Price)
	}
	if req.ThumbnailURL != nil {
		set("thumbnail_url", *req.ThumbnailURL)
	}
	if req.IsPublished != nil {
		set("is_published", *req.IsPublished)
	}

	if len(setParts) == 0 {
		return fmt.Errorf("%w: no fields to update", models.ErrValidation)
	}

	query := fmt.Sprintf(`UPDATE courses SET %s WHERE id = ?`, strings.Join(setParts, ", "))
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}

	return checkAffected(result, fmt.Sprintf("course %d", id))
}

// Delete deletes a course; lessons, quizzes, enrollments and reviews go with it
func (r *courseRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	return checkAffected(result, fmt.Sprintf("course %d", id))
}
