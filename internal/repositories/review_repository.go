package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/courseplatform/backend/internal/models"
)

type reviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *sql.DB) *reviewRepository {
	return &reviewRepository{
		db: db,
	}
}

// GetByCourse retrieves the reviews of a course, newest first
func (r *reviewRepository) GetByCourse(ctx context.Context, courseID int) ([]models.Review, error) {
	query := `
		SELECT rv.id, rv.user_id, rv.course_id, rv.rating, COALESCE(rv.comment, ''), u.full_name, rv.created_at, rv.updated_at
		FROM reviews rv
		JOIN users u ON u.id = rv.user_id
		WHERE rv.course_id = ?
		ORDER BY rv.created_at DESC, rv.id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var review models.Review
		if err := rows.Scan(
			&review.ID,
			&review.UserID,
			&review.CourseID,
			&review.Rating,
			&review.Comment,
			&review.UserName,
			&review.CreatedAt,
			&review.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}

	return reviews, nil
}

// GetByID retrieves a review by its ID
func (r *reviewRepository) GetByID(ctx context.Context, id int) (*models.Review, error) {
	query := `
		SELECT id, user_id, course_id, rating, COALESCE(comment, ''), created_at, updated_at
		FROM reviews
		WHERE id = ?
		LIMIT 1
	`

	var review models.Review
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&review.ID,
		&review.UserID,
		&review.CourseID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("review %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review by id: %w", err)
	}

	return &review, nil
}

// Create creates a review and refreshes the course's average rating.
// Returns an error wrapping models.ErrConflict if the user already reviewed the course.
func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO reviews (user_id, course_id, rating, comment) VALUES (?, ?, ?, ?)`,
		review.UserID, review.CourseID, review.Rating, review.Comment,
	)
	if isDuplicateKey(err) {
		return fmt.Errorf("%w: user %d already reviewed course %d", models.ErrConflict, review.UserID, review.CourseID)
	}
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	if err := refreshAverageRating(ctx, tx, review.CourseID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	review.ID = int(id)
	return nil
}

// Update applies a partial update to a review and refreshes the course's average rating
func (r *reviewRepository) Update(ctx context.Context, review *models.Review, req *models.UpdateReviewRequest) error {
	var setParts []string
	var args []any

	if req.Rating != nil {
		setParts = append(setParts, "rating = ?")
		args = append(args, *req.Rating)
	}
	if req.Comment != nil {
		setParts = append(setParts, "comment = ?")
		args = append(args, *req.Comment)
	}

	if len(setParts) == 0 {
		return fmt.Errorf("%w: no fields to update", models.ErrValidation)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`UPDATE reviews SET %s WHERE id = ?`, strings.Join(setParts, ", "))
	args = append(args, review.ID)
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	if err := checkAffected(result, fmt.Sprintf("review %d", review.ID)); err != nil {
		return err
	}

	if err := refreshAverageRating(ctx, tx, review.CourseID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete deletes a review and refreshes the course's average rating
func (r *reviewRepository) Delete(ctx context.Context, review *models.Review) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, review.ID)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if err := checkAffected(result, fmt.Sprintf("review %d", review.ID)); err != nil {
		return err
	}

	if err := refreshAverageRating(ctx, tx, review.CourseID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func refreshAverageRating(ctx context.Context, tx *sql.Tx, courseID int) error {
	query := `
		UPDATE courses
		SET average_rating = (SELECT COALESCE(ROUND(AVG(rating), 2), 0) FROM reviews WHERE course_id = ?)
		WHERE id = ?
	`
	if _, err := tx.ExecContext(ctx, query, courseID, courseID); err != nil {
		return fmt.Errorf("failed to refresh average rating: %w", err)
	}
	return nil
}
