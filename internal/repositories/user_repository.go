package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/courseplatform/backend/internal/models"
)

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{
		db: db,
	}
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `
		SELECT id, email, full_name, role, created_at
		FROM users
		WHERE id = ?
		LIMIT 1
	`

	var user models.User
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.Role,
		&user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &user, nil
}

// Upsert inserts a user or, when the email already exists, updates its name and role.
// The user's ID is set in both cases.
func (r *userRepository) Upsert(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, full_name, role)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE
			full_name = VALUES(full_name),
			role = VALUES(role),
			id = LAST_INSERT_ID(id)
	`

	result, err := r.db.ExecContext(ctx, query, user.Email, user.FullName, user.Role)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	user.ID = int(id)
	return nil
}
